package headers

import (
	"strconv"

	"pxfbridge/cli/internal/bridge/expr"
	"pxfbridge/cli/internal/bridge/model"
	bridgeerrors "pxfbridge/cli/internal/errors"
)

const (
	HeaderProjCount = "X-GP-ATTRS-PROJ"
	HeaderProjIndex = "X-GP-ATTRS-PROJ-IDX"
)

// EncodeProjection reports the reported indices of the columns req needs:
// plain column targets, columns found inside other targets and columns read by
// the quals. Indices are shifted down past dropped columns.
//
// When the needed columns cannot be proven, no entries are returned together
// with an UnsupportedExpression error; the scan must then request every column.
// A nil request, or one that needs no column, yields no entries and no error.
func EncodeProjection(req *model.ProjectionRequest, table *model.TableSchema) ([]Entry, error) {
	if req == nil || table == nil {
		return nil, nil
	}
	if req.Unsupported {
		return nil, bridgeerrors.New(bridgeerrors.UnsupportedExpression, "column references were not fully classified")
	}

	qualCols, err := expr.ColumnRefs(req.Quals...)
	if err != nil {
		return nil, err
	}
	// Quals that reference no column at all were not understood.
	if len(req.Quals) > 0 && len(qualCols) == 0 {
		return nil, bridgeerrors.New(bridgeerrors.UnsupportedExpression, "no columns extracted from filter expressions")
	}

	targetCols, err := expr.ColumnRefs(req.Targets...)
	if err != nil {
		return nil, err
	}

	needed := make(map[int]struct{}, len(qualCols)+len(targetCols))
	for _, ord := range targetCols {
		needed[ord] = struct{}{}
	}
	for _, ord := range qualCols {
		needed[ord] = struct{}{}
	}

	var indices []int
	dropped := 0
	for _, col := range table.Columns {
		if col.Dropped {
			dropped++
			continue
		}
		if _, ok := needed[col.Ordinal]; ok {
			indices = append(indices, col.Ordinal-1-dropped)
		}
	}
	if len(indices) == 0 {
		return nil, nil
	}

	out := make([]Entry, 0, len(indices)+1)
	out = append(out, Entry{Key: HeaderProjCount, Value: strconv.Itoa(len(indices))})
	for _, idx := range indices {
		out = append(out, Entry{Key: HeaderProjIndex, Value: strconv.Itoa(idx)})
	}
	return out, nil
}
