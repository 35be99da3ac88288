package course

// Course is a catalog entry as seen by this service.
type Course struct {
	ID          int64   `json:"id"`
	CourseName  string  `json:"coursename"`
	Price       float64 `json:"price"`
	AboutCourse string  `json:"aboutcourse"`
	Category    string  `json:"category"`
	Level       string  `json:"level"`
	Popularity  int     `json:"popularity"`
}
