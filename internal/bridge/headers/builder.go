package headers

import (
	stderrors "errors"
	"strconv"
	"strings"

	"pxfbridge/cli/internal/bridge/model"
	bridgeerrors "pxfbridge/cli/internal/errors"
	"pxfbridge/cli/internal/logging"
)

// APIVersion is the protocol version announced in every request.
const APIVersion = "16"

const (
	HeaderFormat           = "X-GP-FORMAT"
	HeaderEncodedValues    = "X-GP-ENCODED-HEADER-VALUES"
	HeaderUser             = "X-GP-USER"
	HeaderSegmentID        = "X-GP-SEGMENT-ID"
	HeaderSegmentCount     = "X-GP-SEGMENT-COUNT"
	HeaderXID              = "X-GP-XID"
	HeaderAPIVersion       = "X-GP-PXF-API-VERSION"
	HeaderSessionID        = "X-GP-SESSION-ID"
	HeaderCommandCount     = "X-GP-COMMAND-COUNT"
	HeaderAlignment        = "X-GP-ALIGNMENT"
	HeaderURLHost          = "X-GP-URL-HOST"
	HeaderURLPort          = "X-GP-URL-PORT"
	HeaderDataDir          = "X-GP-DATA-DIR"
	HeaderTableName        = "X-GP-TABLE-NAME"
	HeaderSchemaName       = "X-GP-SCHEMA-NAME"
	HeaderDataEncoding     = "X-GP-DATA-ENCODING"
	HeaderDatabaseEncoding = "X-GP-DATABASE-ENCODING"
	HeaderURI              = "X-GP-URI"
	HeaderFilter           = "X-GP-FILTER"
	HeaderHasFilter        = "X-GP-HAS-FILTER"
	HeaderConnection       = "Connection"

	// OptionPrefix is prepended to upper-cased option keys.
	OptionPrefix = "X-GP-OPTIONS-"
)

// Storage format names understood by the remote service.
const (
	FormatNameText     = "TEXT"
	FormatNameWritable = "GPDBWritable"
)

var (
	// ErrUnknownFormat is wrapped for a format code with no remote format name.
	ErrUnknownFormat = stderrors.New("unable to get format name")
	// ErrUnknownUser is wrapped when the session carries no user identity.
	ErrUnknownUser = stderrors.New("user identity is unknown")
)

// Alignment is the host pointer width in bytes.
var Alignment = strconv.IntSize / 8

// Request is everything one scan or insert contributes to its header set.
type Request struct {
	// Table is nil when the schema is not known, e.g. a write with no read-back.
	Table *model.TableSchema
	// Format is only consulted when Table is set.
	Format model.Format
	// Projection is set for reads that carry projection information.
	Projection *model.ProjectionRequest
	Session    model.SessionContext
	Location   model.Location
	// DatabaseEncoding is the server encoding of the local database.
	DatabaseEncoding string
	// Filter is the serialized filter predicate; empty means none.
	Filter string
}

// Build assembles the header set for req. On error nothing is returned.
func Build(req Request) (*Headers, error) {
	h := New()

	tableName := req.Location.Resource
	schemaName := ""
	dataEncoding := ""

	if req.Table != nil {
		format, err := FormatName(req.Format.Code)
		if err != nil {
			return nil, err
		}
		h.Append(HeaderFormat, format)

		opts, err := formatOptions(req.Format)
		if err != nil {
			return nil, err
		}
		h.appendAll(opts)
		dataEncoding = req.Format.Encoding

		schema, err := EncodeSchema(req.Table)
		if err != nil {
			return nil, err
		}
		h.appendAll(schema)

		tableName = req.Table.Name
		schemaName = req.Table.Namespace
	}

	if req.Projection != nil {
		proj, err := EncodeProjection(req.Projection, req.Table)
		switch {
		case err == nil:
			h.appendAll(proj)
		case stderrors.Is(err, bridgeerrors.ErrUnsupportedExpression):
			logging.Debug().Err(err).Msg("Query will not be optimized to use projection information")
		default:
			return nil, err
		}
	}

	if req.Session.User == "" {
		return nil, bridgeerrors.Wrap(bridgeerrors.Configuration, "cannot impersonate", ErrUnknownUser)
	}
	h.Append(HeaderEncodedValues, "true")
	h.Append(HeaderUser, req.Session.User)
	h.Append(HeaderSegmentID, strconv.Itoa(req.Session.SegmentID))
	h.Append(HeaderSegmentCount, strconv.Itoa(req.Session.SegmentCount))
	h.Append(HeaderXID, req.Session.TransactionID)
	h.Append(HeaderAPIVersion, APIVersion)
	h.Append(HeaderSessionID, strconv.FormatInt(req.Session.SessionID, 10))
	h.Append(HeaderCommandCount, strconv.FormatInt(req.Session.CommandCount, 10))

	h.Append(HeaderAlignment, strconv.Itoa(Alignment))

	h.Append(HeaderURLHost, req.Location.Host)
	h.Append(HeaderURLPort, req.Location.PortString())
	h.Append(HeaderDataDir, req.Location.Resource)
	h.Append(HeaderTableName, tableName)
	h.Append(HeaderSchemaName, schemaName)
	h.Append(HeaderDataEncoding, dataEncoding)
	h.Append(HeaderDatabaseEncoding, req.DatabaseEncoding)

	for _, opt := range req.Location.Options {
		key, err := OptionKey(opt.Key)
		if err != nil {
			return nil, err
		}
		h.Append(key, opt.Value)
	}

	h.Append(HeaderURI, req.Location.URI)

	if req.Filter != "" {
		h.Append(HeaderFilter, req.Filter)
		h.Append(HeaderHasFilter, "1")
	} else {
		h.Append(HeaderHasFilter, "0")
	}

	// One connection per operation.
	h.Override(HeaderConnection, "close")

	logging.Debug().
		Int("headers", h.Len()).
		Str("resource", req.Location.Resource).
		Msg("built request headers")
	return h, nil
}

// FormatName maps a storage format code to the name the remote service expects.
// CSV travels as TEXT with a FORMAT option.
func FormatName(code byte) (string, error) {
	switch code {
	case model.FormatText, model.FormatCSV:
		return FormatNameText, nil
	case model.FormatCustom:
		return FormatNameWritable, nil
	default:
		return "", bridgeerrors.Wrap(bridgeerrors.Configuration, "format code "+strconv.QuoteRune(rune(code)), ErrUnknownFormat)
	}
}

// OptionKey turns a user option key into its header name.
func OptionKey(key string) (string, error) {
	if key == "" {
		return "", bridgeerrors.New(bridgeerrors.Configuration, "option key is empty")
	}
	return OptionPrefix + strings.ToUpper(key), nil
}

func formatOptions(f model.Format) ([]Entry, error) {
	var out []Entry
	if f.Code == model.FormatCSV {
		out = append(out, Entry{Key: OptionPrefix + "FORMAT", Value: "csv"})
	}
	for _, opt := range f.Options {
		key, err := OptionKey(opt.Key)
		if err != nil {
			return nil, err
		}
		out = append(out, Entry{Key: key, Value: opt.Value})
	}
	return out, nil
}
