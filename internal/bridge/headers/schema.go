package headers

import (
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgtype"

	"pxfbridge/cli/internal/bridge/model"
	bridgeerrors "pxfbridge/cli/internal/errors"
	"pxfbridge/cli/internal/logging"
)

const (
	HeaderAttrs = "X-GP-ATTRS"

	attrNameFmt     = "X-GP-ATTR-NAME%d"
	attrTypeCodeFmt = "X-GP-ATTR-TYPECODE%d"
	attrTypeNameFmt = "X-GP-ATTR-TYPENAME%d"
	typmodCountFmt  = "X-GP-ATTR-TYPEMOD%d-COUNT"
	typmodValueFmt  = "X-GP-ATTR-TYPEMOD%d-%d"
)

// EncodeSchema reports every non-dropped column of table under a contiguous
// 0-based index, followed by the column count. Dropped columns do not consume
// an index.
func EncodeSchema(table *model.TableSchema) ([]Entry, error) {
	var (
		out     []Entry
		typeMap *pgtype.Map
	)
	idx := 0
	for _, col := range table.Columns {
		if col.Dropped {
			continue
		}

		typeName := col.TypeName
		if typeName == "" {
			if typeMap == nil {
				typeMap = pgtype.NewMap()
			}
			t, ok := typeMap.TypeForOID(col.TypeOID)
			if !ok {
				return nil, bridgeerrors.Newf(bridgeerrors.Configuration,
					"cache lookup failed for type %d of column %q", col.TypeOID, col.Name)
			}
			typeName = t.Name
		}

		out = append(out,
			Entry{Key: fmt.Sprintf(attrNameFmt, idx), Value: col.Name},
			Entry{Key: fmt.Sprintf(attrTypeCodeFmt, idx), Value: strconv.FormatUint(uint64(col.TypeOID), 10)},
			Entry{Key: fmt.Sprintf(attrTypeNameFmt, idx), Value: typeName},
		)

		if mods := TypeModifiers(col.TypeOID, col.TypeMod); len(mods) > 0 {
			out = append(out, Entry{Key: fmt.Sprintf(typmodCountFmt, idx), Value: strconv.Itoa(len(mods))})
			for k, m := range mods {
				out = append(out, Entry{Key: fmt.Sprintf(typmodValueFmt, idx, k), Value: strconv.FormatInt(int64(m), 10)})
			}
		} else if col.HasTypeMod() {
			logging.Trace().
				Uint32("type_oid", col.TypeOID).
				Str("column", col.Name).
				Msg("type modifier not reported for type")
		}
		idx++
	}
	out = append(out, Entry{Key: HeaderAttrs, Value: strconv.Itoa(idx)})
	return out, nil
}
