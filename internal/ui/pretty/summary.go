package pretty

import "fmt"

// FormatCheckSummary formats the counts of a check run as a single line.
// Example: "3 documents checked: 2 valid, 1 invalid".
func (s *Styles) FormatCheckSummary(valid, failed int) string {
	total := valid + failed
	noun := "documents"
	if total == 1 {
		noun = "document"
	}

	if failed == 0 {
		return s.Success.Render(fmt.Sprintf("%d %s checked", total, noun)) +
			s.Dim.Render(", all valid") + "\n"
	}

	return fmt.Sprintf("%d %s checked: %s, %s\n", total, noun,
		s.Success.Render(fmt.Sprintf("%d valid", valid)),
		s.Failure.Render(fmt.Sprintf("%d invalid", failed)))
}
