package document

// TextExtractor passes plain text through unchanged.
type TextExtractor struct{}

func (e *TextExtractor) Extract(data []byte) (string, error) {
	return string(data), nil
}
