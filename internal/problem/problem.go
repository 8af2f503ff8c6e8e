package problem

// Problem is a coding challenge shared by both players in a race.
// Only Title, Description and StartingCode cross the wire; the test
// lists stay server-side and feed the grader.
type Problem struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	StartingCode string   `json:"starting_code"`
	PublicTests  []string `json:"public_tests,omitempty"`
	PrivateTests []string `json:"private_tests,omitempty"`
}

// Public returns a copy stripped of the test lists, safe to broadcast.
func (p *Problem) Public() *Problem {
	return &Problem{
		Title:        p.Title,
		Description:  p.Description,
		StartingCode: p.StartingCode,
	}
}
