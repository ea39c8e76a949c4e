package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "photo.jpg", want: "photo.jpg"},
		{name: "spaces", in: "my  cool\tphoto.JPG", want: "my_cool_photo.JPG"},
		{name: "unix traversal", in: "../../etc/passwd", want: "etc_passwd"},
		{name: "windows path", in: `C:\Users\ada\front.png`, want: "C_Users_ada_front.png"},
		{name: "accents folded", in: "café crème.gif", want: "cafe_creme.gif"},
		{name: "non latin dropped", in: "фото.jpeg", want: "jpeg"},
		{name: "unsafe chars", in: "a<b>|c?.png", want: "abc.png"},
		{name: "leading dots", in: "...hidden.png", want: "hidden.png"},
		{name: "only separators", in: "../", want: ""},
		{name: "empty", in: "", want: ""},
		{name: "device name", in: "con.jpg", want: "_con.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}
