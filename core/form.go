package core

// Genders is the enumerated catalog accepted by the gender field.
var Genders = []string{"male", "female", "other"}

// Hobbies is the fixed catalog of hobby tags offered by the form.
var Hobbies = []string{"coding", "reading", "music", "sports"}

type (
	// ProfileImage is a user-selected image file. It is owned by the live
	// FormState until a submission encodes it into a portable data URL.
	ProfileImage struct {
		Name string `json:"name"`
		MIME string `json:"mime"`
		Data []byte `json:"-"`
	}

	// FormState is the in-progress, editable record of one not-yet-submitted
	// entry. Exactly one FormState is live per session; submitting or
	// resetting replaces it wholesale with a fresh zero value.
	FormState struct {
		Name    string        `json:"name"`
		Email   string        `json:"email"`
		Age     string        `json:"age"`
		Gender  string        `json:"gender"`
		Bio     string        `json:"bio"`
		Hobbies []string      `json:"hobbies"`
		Agree   bool          `json:"agree"`
		Profile *ProfileImage `json:"profile,omitempty"`
	}

	// ValidationResult maps a field name to a human-readable error message.
	// Absence of a key means the field is valid; an empty map means the form
	// is submittable. Any present key counts as an error, whatever the
	// message says.
	ValidationResult map[string]string

	// PreviewHandle is the ephemeral display resource derived from the
	// selected profile image. At most one handle is live at a time and it
	// must be released when the image that produced it is superseded.
	PreviewHandle struct {
		Token string `json:"token"`
		URL   string `json:"url"`
	}
)

// ValidGender reports whether g is one of the enumerated gender values.
func ValidGender(g string) bool {
	for _, v := range Genders {
		if g == v {
			return true
		}
	}
	return false
}

// HasHobby reports whether tag is present in the state's hobby set.
func (s *FormState) HasHobby(tag string) bool {
	for _, h := range s.Hobbies {
		if h == tag {
			return true
		}
	}
	return false
}

// Clone returns a copy of the state that is safe to hold across later edits.
// The hobby set is copied; the profile image is shared, since images are
// replaced rather than mutated.
func (s *FormState) Clone() FormState {
	out := *s
	if s.Hobbies != nil {
		out.Hobbies = append([]string(nil), s.Hobbies...)
	}
	return out
}
