package student

type Student struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Active    bool   `json:"active"`
}

func (s *Student) FullName() string {
	if s.FirstName == "" {
		return s.LastName
	}
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}
