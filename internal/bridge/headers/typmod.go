package headers

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// varHdrSz is the size of the length word stored in front of variable-length
// values; the catalog folds it into char and numeric type modifiers.
const varHdrSz = 4

type typmodCategory int

const (
	typmodNone typmodCategory = iota
	typmodNumeric
	typmodCharLength
	typmodRaw
	typmodInterval
)

var typmodCategories = map[uint32]typmodCategory{
	pgtype.NumericOID:      typmodNumeric,
	pgtype.NumericArrayOID: typmodNumeric,

	pgtype.QCharOID:        typmodCharLength,
	pgtype.QCharArrayOID:   typmodCharLength,
	pgtype.BPCharOID:       typmodCharLength,
	pgtype.BPCharArrayOID:  typmodCharLength,
	pgtype.VarcharOID:      typmodCharLength,
	pgtype.VarcharArrayOID: typmodCharLength,

	pgtype.VarbitOID:           typmodRaw,
	pgtype.VarbitArrayOID:      typmodRaw,
	pgtype.BitOID:              typmodRaw,
	pgtype.BitArrayOID:         typmodRaw,
	pgtype.TimestampOID:        typmodRaw,
	pgtype.TimestampArrayOID:   typmodRaw,
	pgtype.TimestamptzOID:      typmodRaw,
	pgtype.TimestamptzArrayOID: typmodRaw,
	pgtype.TimeOID:             typmodRaw,
	pgtype.TimeArrayOID:        typmodRaw,
	pgtype.TimetzOID:           typmodRaw,
	pgtype.TimetzArrayOID:      typmodRaw,

	pgtype.IntervalOID:      typmodInterval,
	pgtype.IntervalArrayOID: typmodInterval,
}

// TypeModifiers decodes a stored type modifier into the values reported for a
// column of type typeOID. Types without modifiers, and a negative modifier,
// yield nil.
func TypeModifiers(typeOID uint32, typmod int32) []int32 {
	if typmod < 0 {
		return nil
	}
	switch typmodCategories[typeOID] {
	case typmodNumeric:
		precision := (typmod >> 16) & 0xffff
		scale := (typmod - varHdrSz) & 0xffff
		return []int32{precision, scale}
	case typmodCharLength:
		return []int32{typmod - varHdrSz}
	case typmodRaw:
		return []int32{typmod}
	case typmodInterval:
		return []int32{typmod & 0xffff}
	default:
		return nil
	}
}
