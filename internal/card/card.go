// Package card defines the card record model shared by every pipeline stage:
// the raw export row, the decoded fixed-shape Record, and the tagged Value
// used for projected output columns.
package card

// Column names as they appear in the card export and in the output dataset.
const (
	ColName          = "name"
	ColFaceName      = "faceName"
	ColEDHRECRank    = "edhrecRank"
	ColColorIdentity = "colorIdentity"
	ColColors        = "colors"
	ColManaCost      = "manaCost"
	ColManaValue     = "manaValue"
	ColType          = "type"
	ColCreatureTypes = "creatureTypes"
	ColText          = "text"
	ColPower         = "power"
	ColToughness     = "toughness"
	ColKeywords      = "keywords"
	ColThemeTags     = "themeTags"
	ColLayout        = "layout"
	ColSide          = "side"
	ColAvailability  = "availability"
	ColPromoTypes    = "promoTypes"
	ColSecurityStamp = "securityStamp"
	ColSetCode       = "setCode"
)

var columnKinds = map[string]Kind{
	ColName:          KindText,
	ColFaceName:      KindText,
	ColEDHRECRank:    KindInt,
	ColColorIdentity: KindText,
	ColColors:        KindList,
	ColManaCost:      KindText,
	ColManaValue:     KindFloat,
	ColType:          KindText,
	ColCreatureTypes: KindList,
	ColText:          KindText,
	ColPower:         KindStat,
	ColToughness:     KindStat,
	ColKeywords:      KindList,
	ColThemeTags:     KindList,
	ColLayout:        KindText,
	ColSide:          KindText,
	ColAvailability:  KindList,
	ColPromoTypes:    KindList,
	ColSecurityStamp: KindText,
	ColSetCode:       KindText,
}

// KindOf returns the declared kind of a column. Unknown columns are text.
func KindOf(column string) Kind {
	if k, ok := columnKinds[column]; ok {
		return k
	}
	return KindText
}

// KnownColumn reports whether column is part of the card model.
func KnownColumn(column string) bool {
	_, ok := columnKinds[column]
	return ok
}

// Empty returns the placeholder for an absent optional column: "" for text,
// an empty list for lists, Null for numbers and stats.
func Empty(column string) Value {
	switch KindOf(column) {
	case KindText:
		return Text("")
	case KindList:
		return List()
	default:
		return Null()
	}
}

// Opt is an optional field. The zero Opt is absent.
type Opt[T any] struct {
	v  T
	ok bool
}

// Some returns a present Opt holding v.
func Some[T any](v T) Opt[T] { return Opt[T]{v: v, ok: true} }

// Get returns the held value and whether it is present.
func (o Opt[T]) Get() (T, bool) { return o.v, o.ok }

// Present reports whether the field was supplied.
func (o Opt[T]) Present() bool { return o.ok }

// Or returns the held value or def when absent.
func (o Opt[T]) Or(def T) T {
	if o.ok {
		return o.v
	}
	return def
}

// Raw is one export row keyed by canonical column name. A missing key means
// the field is absent for this row; list cells are comma separated.
type Raw struct {
	Line   int
	Fields map[string]string
}

// Record is a decoded card row. Every field except Name may be absent.
type Record struct {
	Line int

	Name          string
	FaceName      Opt[string]
	EDHRECRank    Opt[int64]
	ColorIdentity Opt[ColorIdentity]
	Colors        Opt[[]string]
	ManaCost      Opt[string]
	ManaValue     Opt[float64]
	Type          Opt[string]
	Layout        Opt[string]
	Text          Opt[string]
	Power         Stat
	Toughness     Stat
	Keywords      Opt[[]string]
	Side          Opt[string]

	// Filter-only fields; not part of the output columns.
	Availability  Opt[[]string]
	PromoTypes    Opt[[]string]
	SecurityStamp Opt[string]
	SetCode       Opt[string]
}

// SourceLine returns the export line the record was decoded from.
func (r Record) SourceLine() int { return r.Line }

// FaceNames returns the names a ban can match: the card name and, for
// multi-faced cards, the face name.
func (r Record) FaceNames() []string {
	out := []string{r.Name}
	if fn, ok := r.FaceName.Get(); ok && fn != "" && fn != r.Name {
		out = append(out, fn)
	}
	return out
}

// Lookup returns the value of a column and whether the record carries it.
func (r Record) Lookup(column string) (Value, bool) {
	switch column {
	case ColName:
		return Text(r.Name), true
	case ColFaceName:
		return optText(r.FaceName)
	case ColEDHRECRank:
		if n, ok := r.EDHRECRank.Get(); ok {
			return Int(n), true
		}
	case ColColorIdentity:
		if ci, ok := r.ColorIdentity.Get(); ok {
			return Text(string(ci)), true
		}
	case ColColors:
		return optList(r.Colors)
	case ColManaCost:
		return optText(r.ManaCost)
	case ColManaValue:
		if f, ok := r.ManaValue.Get(); ok {
			return Float(f), true
		}
	case ColType:
		return optText(r.Type)
	case ColLayout:
		return optText(r.Layout)
	case ColText:
		return optText(r.Text)
	case ColPower:
		return optStat(r.Power)
	case ColToughness:
		return optStat(r.Toughness)
	case ColKeywords:
		return optList(r.Keywords)
	case ColSide:
		return optText(r.Side)
	case ColAvailability:
		return optList(r.Availability)
	case ColPromoTypes:
		return optList(r.PromoTypes)
	case ColSecurityStamp:
		return optText(r.SecurityStamp)
	case ColSetCode:
		return optText(r.SetCode)
	}
	return Null(), false
}

// Values returns the string values of a filterable field. Text fields yield a
// single element; absent fields report false.
func (r Record) Values(column string) ([]string, bool) {
	v, ok := r.Lookup(column)
	if !ok {
		return nil, false
	}
	if items, isList := v.Items(); isList {
		return items, true
	}
	return []string{v.String()}, true
}

func optText(o Opt[string]) (Value, bool) {
	if s, ok := o.Get(); ok {
		return Text(s), true
	}
	return Null(), false
}

func optList(o Opt[[]string]) (Value, bool) {
	if l, ok := o.Get(); ok {
		return List(l...), true
	}
	return Null(), false
}

func optStat(s Stat) (Value, bool) {
	if s.Kind() == StatAbsent {
		return Null(), false
	}
	return StatValue(s), true
}
