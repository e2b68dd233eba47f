package record

import "record-serializer/internal/common"

// Kind is the value shape of a record attribute.
type Kind int

const (
	KindUnknown   Kind = iota
	KindBoolean        // bool
	KindChar           // single-line string
	KindText           // multi-line string
	KindHTML           // markup string
	KindInteger        // int64
	KindFloat          // float64
	KindMonetary       // float64 amount
	KindSelection      // string out of a fixed choice list
	KindDate           // calendar date
	KindDatetime       // timestamp
	KindMany2One       // single reference
	KindOne2Many       // to-many reference through an inverse many2one
	KindMany2Many      // to-many reference stored on the owner
	KindBinary         // opaque bytes, no transform rule
)

var kindNames = map[Kind]string{
	KindBoolean:   "boolean",
	KindChar:      "char",
	KindText:      "text",
	KindHTML:      "html",
	KindInteger:   "integer",
	KindFloat:     "float",
	KindMonetary:  "monetary",
	KindSelection: "selection",
	KindDate:      "date",
	KindDatetime:  "datetime",
	KindMany2One:  "many2one",
	KindOne2Many:  "one2many",
	KindMany2Many: "many2many",
	KindBinary:    "binary",
}

// String returns the configuration name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return common.UnknownStr
}

// ParseKind returns the kind for a configuration name, or KindUnknown.
func ParseKind(name string) Kind {
	for k, n := range kindNames {
		if n == name {
			return k
		}
	}

	return KindUnknown
}

// IsScalar reports whether values of this kind are passed through as plain values.
func (k Kind) IsScalar() bool {
	switch k {
	case KindBoolean, KindChar, KindText, KindHTML, KindInteger, KindFloat,
		KindMonetary, KindSelection, KindDate, KindDatetime:
		return true
	default:
		return false
	}
}

// IsTemporal reports whether the kind holds a date or a timestamp.
func (k Kind) IsTemporal() bool {
	return k == KindDate || k == KindDatetime
}

// IsRelational reports whether the kind references other records.
func (k Kind) IsRelational() bool {
	return k == KindMany2One || k == KindOne2Many || k == KindMany2Many
}

// IsToMany reports whether the kind references a list of records.
func (k Kind) IsToMany() bool {
	return k == KindOne2Many || k == KindMany2Many
}

// MarshalYAML writes the kind by name.
func (k Kind) MarshalYAML() (any, error) {
	return k.String(), nil
}

// UnmarshalYAML reads the kind by name. Unrecognized names become KindUnknown
// so validation can report them with context.
func (k *Kind) UnmarshalYAML(unmarshal func(any) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}

	*k = ParseKind(name)

	return nil
}
