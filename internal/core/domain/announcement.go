package domain

// Announcement is an immutable notice posted by a privileged user. Titles are
// not required to be unique.
type Announcement struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  string `json:"author"`
	Time    string `json:"time"`
}
