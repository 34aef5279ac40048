// Package stockcode derives product stock codes and the variant list of a
// product from its name, color combinations and sizes.
//
// Generation is deterministic: the same input always produces the same
// output, and nothing is read from the environment. The code prefix is
// supplied by the caller.
package stockcode

import (
	"regexp"
	"strings"
)

const (
	// DefaultPrefix is used when neither the caller nor the configuration
	// provides a prefix.
	DefaultPrefix = "M"

	// StandardCode stands in for a missing size or color code.
	StandardCode = "STD"

	// SingleColor is the combination used when a product has no colors.
	SingleColor = "Tek"
)

// Input holds the values a stock code is derived from.
type Input struct {
	Name              string
	ColorCombinations []string
	Sizes             []string
	Prefix            string
}

// Variant is one color combination and size pairing.
type Variant struct {
	Color       string
	Size        string
	VariantCode string
	ColorCode   string
}

// Result is the output of Generate.
type Result struct {
	// BaseCode is "<prefix>-<base>" or the bare prefix when the name
	// yields no base letters.
	BaseCode string

	// PrimaryCode is the code of the first variant.
	PrimaryCode string

	Variants          []Variant
	ColorCombinations []string
	Sizes             []string
	Prefix            string
}

var transliterator = strings.NewReplacer(
	"ç", "c", "ğ", "g", "ı", "i", "ö", "o", "ş", "s", "ü", "u",
	"Ç", "C", "Ğ", "G", "İ", "I", "Ö", "O", "Ş", "S", "Ü", "U",
	"â", "a", "Â", "A", "î", "i", "Î", "I", "û", "u", "Û", "U",
	"á", "a", "Á", "A", "à", "a", "À", "A", "é", "e", "É", "E",
	"è", "e", "È", "E", "ó", "o", "Ó", "O", "ò", "o", "Ò", "O",
)

var (
	nonAlphanumeric  = regexp.MustCompile(`[^A-Z0-9]`)
	numericWord      = regexp.MustCompile(`^[0-9]+$`)
	trailingCombo    = regexp.MustCompile(`(?:^|\s)(\S+(?:\s*/\s*\S+)+)$`)
	trailingSizeUnit = regexp.MustCompile(`(?i)\s*cm$`)
)

// Generate builds the stock data for a product.
func Generate(in Input) Result {
	prefix := strings.TrimSpace(in.Prefix)
	if prefix == "" {
		prefix = DefaultPrefix
	}

	base := baseCode(in.Name)

	combos := make([]string, 0, len(in.ColorCombinations))
	for _, c := range in.ColorCombinations {
		if n := normalizeCombination(c); n != "" {
			combos = append(combos, n)
		}
	}
	if len(combos) == 0 {
		if c := comboFromName(in.Name); c != "" {
			combos = append(combos, c)
		}
	}
	if len(combos) == 0 {
		combos = []string{SingleColor}
	}

	sizes := make([]string, 0, len(in.Sizes))
	for _, s := range in.Sizes {
		if s = strings.TrimSpace(s); s == "" {
			s = StandardCode
		}
		sizes = append(sizes, s)
	}
	if len(sizes) == 0 {
		sizes = []string{StandardCode}
	}

	variants := make([]Variant, 0, len(combos)*len(sizes))
	for _, combo := range combos {
		colorCode := ColorCode(combo)
		for _, size := range sizes {
			variants = append(variants, Variant{
				Color:       combo,
				Size:        size,
				VariantCode: joinCode(prefix, base, colorCode, SizeCode(size)),
				ColorCode:   colorCode,
			})
		}
	}

	res := Result{
		BaseCode:          joinCode(prefix, base),
		Variants:          variants,
		ColorCombinations: combos,
		Sizes:             sizes,
		Prefix:            prefix,
	}
	if len(variants) > 0 {
		res.PrimaryCode = variants[0].VariantCode
	} else {
		res.PrimaryCode = res.BaseCode
	}

	return res
}

// ColorCode returns the first letter of every part of a "/"-joined color
// combination, "X" for parts without usable letters, or STD when the
// combination is empty.
func ColorCode(combo string) string {
	normalized := normalizeCombination(combo)
	if normalized == "" {
		return StandardCode
	}

	var b strings.Builder
	for _, part := range strings.Split(normalized, "/") {
		word := sanitizeWord(part)
		if word == "" {
			b.WriteByte('X')
			continue
		}
		b.WriteByte(word[0])
	}
	return b.String()
}

// SizeCode returns the code form of a size.
func SizeCode(size string) string {
	if code := sanitizeWord(strings.TrimSpace(size)); code != "" {
		return code
	}
	return StandardCode
}

// SanitizeSize trims a size and drops a trailing "cm" unit.
func SanitizeSize(size string) string {
	trimmed := strings.TrimSpace(size)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(trailingSizeUnit.ReplaceAllString(trimmed, ""))
}

// SanitizeSizes applies SanitizeSize to every entry, dropping empty and
// duplicate values while keeping the original order.
func SanitizeSizes(sizes []string) []string {
	seen := make(map[string]struct{}, len(sizes))
	out := make([]string, 0, len(sizes))
	for _, s := range sizes {
		s = SanitizeSize(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func transliterate(text string) string {
	return transliterator.Replace(text)
}

func sanitizeWord(word string) string {
	return nonAlphanumeric.ReplaceAllString(strings.ToUpper(transliterate(word)), "")
}

// baseName strips a trailing color combination such as "Kırmızı/Mavi"
// from a product name.
func baseName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	loc := trailingCombo.FindStringSubmatchIndex(trimmed)
	if loc == nil {
		return trimmed
	}
	if base := strings.TrimSpace(trimmed[:loc[2]]); base != "" {
		return base
	}
	return trimmed
}

func baseCode(name string) string {
	var b strings.Builder
	index := 0
	for _, raw := range strings.Fields(baseName(name)) {
		word := sanitizeWord(raw)
		if word == "" {
			continue
		}
		switch {
		case numericWord.MatchString(word):
			b.WriteString(word)
		case index == 1:
			b.WriteString(word[:min(3, len(word))])
		default:
			b.WriteByte(word[0])
		}
		index++
	}
	return b.String()
}

func comboFromName(name string) string {
	m := trailingCombo.FindStringSubmatch(strings.TrimSpace(name))
	if m == nil {
		return ""
	}
	return normalizeCombination(m[1])
}

func normalizeCombination(combo string) string {
	if combo == "" {
		return ""
	}
	parts := strings.Split(combo, "/")
	kept := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "/")
}

func joinCode(segments ...string) string {
	kept := make([]string, 0, len(segments))
	for _, s := range segments {
		if s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, "-")
}
