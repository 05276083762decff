package index

// Posting is one document's entry under a term.
type Posting struct {
	DocID     string `json:"doc_id" yaml:"doc_id"`
	Frequency int    `json:"frequency" yaml:"frequency"`
	DocLength int    `json:"doc_length" yaml:"doc_length"`
}

type PostingList []Posting

type TermEntry struct {
	Term     string      `json:"term" yaml:"term"`
	Postings PostingList `json:"postings" yaml:"postings"`
}

// Entry is a tokenized document ready to be inserted.
type Entry struct {
	DocID       string
	Frequencies map[string]int
}

// Lookup is a consistent read of the index for a set of query terms. Terms
// absent from the index have no key in Postings.
type Lookup struct {
	CorpusSize int
	Postings   map[string]PostingList
}

type document struct {
	ordinal uint32
	freqs   map[string]int
	length  int
}
