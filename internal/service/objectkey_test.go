package service

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "resume.pdf", "resume.pdf"},
		{"spaces to underscore", "My Resume 2026.pdf", "My_Resume_2026.pdf"},
		{"path stripped", "/etc/passwd", "passwd"},
		{"unsafe chars dropped", "cv<script>.pdf", "cvscript.pdf"},
		{"cyrillic dropped", "резюме.docx", "file.docx"},
		{"empty base", "???.pdf", "file.pdf"},
		{"no extension", "resume", "resume"},
		{"uppercase extension lowered", "CV.PDF", "CV.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}

func TestBuildObjectKey(t *testing.T) {
	key := BuildObjectKey("user-1", "My CV.pdf")

	assert.Regexp(t, regexp.MustCompile(`^resumes/user-1/\d+-My_CV\.pdf$`), key)
	assert.NoError(t, AuthorizeObjectKey("user-1", key))
}

func TestAuthorizeObjectKey(t *testing.T) {
	tests := []struct {
		name    string
		userID  string
		key     string
		wantErr error
	}{
		{"own key", "user-1", "resumes/user-1/123-cv.pdf", nil},
		{"foreign key", "user-1", "resumes/user-2/123-cv.pdf", ErrForbiddenKey},
		{"no prefix", "user-1", "cv.pdf", ErrForbiddenKey},
		{"prefix of longer user id", "user-1", "resumes/user-10/123-cv.pdf", ErrForbiddenKey},
		{"empty key", "user-1", "", ErrInvalidKey},
		{"empty user", "", "resumes/user-1/cv.pdf", ErrInvalidKey},
		{"traversal", "user-1", "resumes/user-1/../user-2/cv.pdf", ErrInvalidKey},
		{"prefix only", "user-1", "resumes/user-1/", ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AuthorizeObjectKey(tt.userID, tt.key)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
