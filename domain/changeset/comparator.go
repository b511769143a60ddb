package changeset

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"
)

// NotSet is how an empty value is rendered
const NotSet = "Not set"

// DateFormat is the short calendar date used in summaries
const DateFormat = "Jan 2, 2006"

// Equal compares two values using type-aware rules.
func Equal(a, b Value) bool {
	if a.IsEmpty() || b.IsEmpty() {
		return a.IsEmpty() && b.IsEmpty()
	}

	switch {
	case a.Kind == KindDate && b.Kind == KindDate:
		return a.Time.Equal(b.Time)
	case a.Kind == KindReference && b.Kind == KindReference:
		return equalReference(a, b)
	case a.Kind == KindNumber && b.Kind == KindNumber:
		return a.Number == b.Number
	case a.Kind == KindScalar && b.Kind == KindScalar:
		return a.Text == b.Text
	case a.Kind == KindList && b.Kind == KindList:
		if len(a.Items) != len(b.Items) {
			return false
		}
		for i := range a.Items {
			if !Equal(a.Items[i], b.Items[i]) {
				return false
			}
		}
		return true
	case a.Kind == KindNumber && b.Kind == KindScalar:
		return equalNumberText(a.Number, b.Text)
	case a.Kind == KindScalar && b.Kind == KindNumber:
		return equalNumberText(b.Number, a.Text)
	case a.Kind == KindReference && b.Kind == KindScalar:
		return a.Name != "" && a.Name == b.Text
	case a.Kind == KindScalar && b.Kind == KindReference:
		return b.Name != "" && b.Name == a.Text
	}
	return reflect.DeepEqual(a.Raw, b.Raw)
}

// EqualRaw parses both raw values with the same kind hint and compares them
func EqualRaw(oldRaw, newRaw any, kind FieldKind) bool {
	return Equal(ParseValue(oldRaw, kind), ParseValue(newRaw, kind))
}

func equalReference(a, b Value) bool {
	if a.ID != "" && b.ID != "" {
		return a.ID == b.ID
	}
	if a.Name != "" && b.Name != "" {
		return a.Name == b.Name
	}
	return reflect.DeepEqual(a.Raw, b.Raw)
}

func equalNumberText(n float64, text string) bool {
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	return err == nil && f == n
}

// Format renders a value for display. It never panics.
func Format(v Value) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = fmt.Sprint(v.Raw)
		}
	}()

	switch v.Kind {
	case KindEmpty:
		return NotSet
	case KindScalar:
		return v.Text
	case KindNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case KindReference:
		if v.Name != "" {
			return v.Name
		}
		return v.ID
	case KindDate:
		return v.Time.Format(DateFormat)
	case KindList:
		return fmt.Sprintf("%d item(s)", len(v.Items))
	}
	return fmt.Sprint(v.Raw)
}

// FormatField renders a value according to the field kind
func FormatField(v Value, kind FieldKind) string {
	if kind == FieldStatus && v.Kind == KindScalar {
		return titleCase(v.Text)
	}
	if kind == FieldItems && v.Kind == KindList {
		return fmt.Sprintf("%d item(s)", len(v.Items))
	}
	return Format(v)
}

// titleCase turns "in_progress" into "In Progress"
func titleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	})
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// labelFromKey derives a display name from a camelCase or snake_case key
func labelFromKey(key string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range key {
		if unicode.IsUpper(r) && prevLower {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
		prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
	}
	return titleCase(b.String())
}
