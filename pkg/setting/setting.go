// Package setting maps product attributes to cinematic setting templates.
package setting

import "strings"

// Category is a cinematic treatment tag for a product.
type Category string

// Known categories. Lifestyle is the catch-all.
const (
	Fashion     Category = "fashion"
	Accessories Category = "accessories"
	Home        Category = "home"
	Tech        Category = "tech"
	Lifestyle   Category = "lifestyle"
)

// Template describes the static cinematic backdrop for a category.
type Template struct {
	Description string
	Atmosphere  string
	Elements    []string
}

// rule pairs catalog category tags with name keywords for one target category.
// Rules are evaluated in order; the first match wins.
type rule struct {
	category Category
	tags     []string
	keywords []string
}

var rules = []rule{
	{Fashion, []string{"clothing", "apparel"}, []string{"shirt", "dress", "jacket", "pants"}},
	{Accessories, []string{"accessories"}, []string{"watch", "jewelry", "bag", "sunglasses"}},
	{Home, []string{"home", "decor"}, []string{"mug", "candle", "pillow"}},
	{Tech, []string{"tech", "electronics"}, []string{"camera", "phone", "headphones"}},
}

// Classify determines the cinematic category for a product. Catalog tags are
// checked before name keywords within each rule, and rules are checked in
// priority order, so a clothing-tagged "Leather Watch" is fashion, not
// accessories.
func Classify(categories []string, name string) Category {
	nameLower := strings.ToLower(name)
	tagsLower := make([]string, len(categories))
	for i, c := range categories {
		tagsLower[i] = strings.ToLower(c)
	}

	for _, r := range rules {
		for _, tag := range tagsLower {
			for _, want := range r.tags {
				if tag == want {
					return r.category
				}
			}
		}
		for _, kw := range r.keywords {
			if strings.Contains(nameLower, kw) {
				return r.category
			}
		}
	}
	return Lifestyle
}

var templates = map[Category]Template{
	Fashion: {
		Description: "A modern, minimalist studio with soft natural lighting from large windows. Clean white backdrop with subtle texture. Professional fashion photography setup.",
		Atmosphere:  "Elegant fashion studio ambiance with premium feeling",
		Elements: []string{
			"Professional photography lights with softboxes",
			"Seamless white backdrop",
			"Elegant wooden flooring",
			"Large windows with diffused daylight",
			"Minimalist furniture pieces",
			"Subtle shadows for depth",
		},
	},
	Accessories: {
		Description: "A luxurious, contemporary display space with marble surfaces and golden hour lighting. Premium materials and sophisticated ambiance.",
		Atmosphere:  "Upscale boutique environment with luxury appeal",
		Elements: []string{
			"Polished marble or granite surfaces",
			"Warm golden hour lighting",
			"Elegant display pedestals",
			"Soft fabric textures in background",
			"Metallic accent pieces",
			"Subtle reflective surfaces",
		},
	},
	Home: {
		Description: "A beautiful, modern home interior with natural lighting and cozy atmosphere. Clean design with warm, inviting elements.",
		Atmosphere:  "Comfortable home environment showcasing lifestyle",
		Elements: []string{
			"Natural wood surfaces",
			"Soft textiles and cushions",
			"Plants and natural elements",
			"Warm ambient lighting",
			"Modern furniture pieces",
			"Lifestyle props that complement the product",
		},
	},
	Tech: {
		Description: "A sleek, futuristic environment with clean lines and modern lighting. High-tech aesthetic with subtle digital elements.",
		Atmosphere:  "Modern tech showcase with innovation feel",
		Elements: []string{
			"Clean geometric surfaces",
			"LED accent lighting",
			"Metallic and glass materials",
			"Subtle digital displays",
			"Modern minimalist furniture",
			"Professional studio lighting",
		},
	},
	Lifestyle: {
		Description: "A versatile, contemporary space that adapts to showcase the product in its best light. Professional commercial setting.",
		Atmosphere:  "Premium commercial environment with broad appeal",
		Elements: []string{
			"Adaptable backdrop system",
			"Professional commercial lighting",
			"Clean, uncluttered surfaces",
			"Neutral color palette",
			"High-quality materials",
			"Flexible styling elements",
		},
	},
}

// For returns the setting template for a category.
// Unknown categories fall back to Lifestyle.
func For(c Category) Template {
	if t, ok := templates[c]; ok {
		return t
	}
	return templates[Lifestyle]
}
