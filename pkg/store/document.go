package store

// Document is one passage returned by the vector search, score in [0,1].
type Document struct {
	ID       string  `json:"id"`
	Text     string  `json:"text"`
	Title    string  `json:"title"`
	Author   string  `json:"author"`
	Date     string  `json:"date"`
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// Source is the display form of a Document, score in [0,100].
type Source struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Date   string `json:"date"`
	Score  int    `json:"score"`
}
