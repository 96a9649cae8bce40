package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseText(t *testing.T) {
	text := `JANE DOE
Senior Data Scientist with a long history of shipping models
jane.doe@example.com | +1 (555) 123-4567

Skills: Python, Machine Learning, scikit-learn, Power BI, Javascript.
Java is not listed twice: javascript.`

	p := ParseText(text, DefaultSkills)

	assert.Equal(t, "JANE DOE", p.Name)
	assert.Equal(t, "jane.doe@example.com", p.Email)
	assert.Equal(t, "+1 (555) 123-4567", p.Phone)
	assert.Equal(t, []string{"Python", "Java", "Machine learning", "Power bi", "Javascript", "Scikit-learn"}, p.Skills)
	assert.NotContains(t, p.FullText, "\n")
	assert.Contains(t, p.FullText, "JANE DOE Senior Data Scientist")
}

func TestParseText_WordBoundaries(t *testing.T) {
	p := ParseText("Worked with reactive streams and awsome people", []string{"react", "aws", "r programming"})
	assert.Empty(t, p.Skills)
}

func TestParseText_NoName(t *testing.T) {
	p := ParseText("contact: someone@example.com today\nthis line is far too long to be a name\nand this one as well honestly", nil)
	assert.Equal(t, "", p.Name)
	assert.Equal(t, "someone@example.com", p.Email)
	assert.Empty(t, p.Phone)
}

func TestParseText_Empty(t *testing.T) {
	p := ParseText("", DefaultSkills)
	assert.Equal(t, "", p.FullText)
	assert.Empty(t, p.Skills)

	_, err := Synthesize(p)
	assert.ErrorIs(t, err, ErrEmptyProfile)
}
