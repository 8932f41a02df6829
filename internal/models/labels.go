package models

// Static label tables for the coded profile attributes. Index 0 is always
// the "not set" entry so a zero value renders as empty.

var BodyTypes = []string{"", "마른", "슬림", "보통", "통통", "근육질"}

var Occupations = []string{
	"", "학생", "회사원", "전문직", "공무원", "자영업", "프리랜서", "기타",
}

var Educations = []string{
	"", "고등학교", "전문대", "대학교", "석사", "박사",
}

var Religions = []string{"", "무교", "기독교", "천주교", "불교", "기타"}

var Drinks = []string{"", "전혀 안함", "가끔", "자주"}

var Smokings = []string{"", "비흡연", "가끔", "흡연"}

var BloodTypes = []string{"", "A", "B", "O", "AB"}

// labelAt guards against out-of-range codes coming off the wire.
func labelAt(table []string, code int) string {
	if code < 0 || code >= len(table) {
		return ""
	}
	return table[code]
}

// BodyLabel resolves the body code to its display label.
func (u *User) BodyLabel() string { return labelAt(BodyTypes, u.BodyID) }

// OccupationLabel resolves the occupation code to its display label.
func (u *User) OccupationLabel() string { return labelAt(Occupations, u.OccupationID) }

// EducationLabel resolves the education code to its display label.
func (u *User) EducationLabel() string { return labelAt(Educations, u.EducationID) }

// ReligionLabel resolves the religion code to its display label.
func (u *User) ReligionLabel() string { return labelAt(Religions, u.ReligionID) }

// DrinkLabel resolves the drink code to its display label.
func (u *User) DrinkLabel() string { return labelAt(Drinks, u.DrinkID) }

// SmokingLabel resolves the smoking code to its display label.
func (u *User) SmokingLabel() string { return labelAt(Smokings, u.SmokingID) }

// BloodLabel resolves the blood type code to its display label.
func (u *User) BloodLabel() string { return labelAt(BloodTypes, u.BloodID) }
