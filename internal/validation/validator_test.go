package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type article struct {
	Title    *string `json:"title" validate:"required,notblank,max=10"`
	Excerpt  *string `json:"excerpt" validate:"omitempty,max=5"`
	Category *int64  `json:"category" validate:"required"`
}

func ptr[T any](v T) *T { return &v }

func TestGetValidatorSingleton(t *testing.T) {
	assert.Same(t, GetValidator(), GetValidator())
}

func TestStruct(t *testing.T) {
	assert.Nil(t, Struct(&article{Title: ptr("Go"), Category: ptr(int64(1))}))

	errs := Struct(&article{})
	assert.Equal(t, []string{"This field is required."}, errs["title"])
	assert.Equal(t, []string{"This field is required."}, errs["category"])
	assert.NotContains(t, errs, "excerpt")

	errs = Struct(&article{Title: ptr("   "), Excerpt: ptr("too long"), Category: ptr(int64(1))})
	assert.Equal(t, []string{"This field may not be blank."}, errs["title"])
	assert.Equal(t, []string{"Ensure this field has no more than 5 characters."}, errs["excerpt"])
}

func TestStructCountsCharacters(t *testing.T) {
	// Ten runes, thirty bytes.
	title := strings.Repeat("博", 10)
	assert.Nil(t, Struct(&article{Title: &title, Category: ptr(int64(1))}))
}

func TestPartial(t *testing.T) {
	assert.Nil(t, Partial(&article{Excerpt: ptr("ok")}))

	errs := Partial(&article{Title: ptr("")})
	assert.Equal(t, FieldErrors{"title": {"This field may not be blank."}}, errs)
}

func TestFieldErrors(t *testing.T) {
	fe := FieldErrors{}
	fe.Add("b", "second")
	fe.Merge(FieldErrors{"a": {"first"}})
	assert.Equal(t, "a: first; b: second", fe.Error())
}
