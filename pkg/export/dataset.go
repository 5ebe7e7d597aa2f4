package export

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Section groups a dataset under a heading, one per machine in
// schedule exports.
type Section struct {
	Heading string
	Data    Dataset
}

// Document is a printable, multi-section export artifact.
type Document struct {
	Title    string
	Subtitle string
	Sections []Section
}
