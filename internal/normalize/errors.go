package normalize

import "errors"

// Error kinds returned by Normalize. Callers match them with errors.Is and
// map them to transport-level responses; the wrapped message carries enough
// detail to fix the input file.
var (
	// ErrUnsupportedFormat means the file extension is not one we parse.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrParse means the content could not be tabulated at all.
	ErrParse = errors.New("file could not be parsed")

	// ErrSchema means no plausible date or amount column was identified.
	ErrSchema = errors.New("required columns not found")

	// ErrTooManyInvalidRows means the rejection rate exceeded the
	// configured threshold and the whole upload is refused.
	ErrTooManyInvalidRows = errors.New("too many invalid rows")
)
