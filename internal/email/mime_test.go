package email

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type decodedPart struct {
	contentType string
	filename    string
	content     []byte
}

func parseMIME(t *testing.T, raw []byte) (*mail.Message, []decodedPart) {
	t.Helper()

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)

	if !strings.HasPrefix(mediaType, "multipart/") {
		content, err := io.ReadAll(base64.NewDecoder(base64.StdEncoding, msg.Body))
		require.NoError(t, err)
		return msg, []decodedPart{{contentType: mediaType, content: content}}
	}

	var parts []decodedPart
	reader := multipart.NewReader(msg.Body, params["boundary"])
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)

		content, err := io.ReadAll(base64.NewDecoder(base64.StdEncoding, part))
		require.NoError(t, err)

		ct, _, err := mime.ParseMediaType(part.Header.Get("Content-Type"))
		require.NoError(t, err)

		parts = append(parts, decodedPart{contentType: ct, filename: part.FileName(), content: content})
	}
	return msg, parts
}

func TestBuildMIMEPlainText(t *testing.T) {
	raw, err := BuildMIME(Message{
		From:     "shop@example.com",
		To:       "owner@example.com",
		Subject:  SubmissionSubject,
		TextBody: SubmissionText("Ada", "ada@example.com", "555-0100"),
	})
	require.NoError(t, err)

	msg, parts := parseMIME(t, raw)
	require.Equal(t, "shop@example.com", msg.Header.Get("From"))
	require.Equal(t, "owner@example.com", msg.Header.Get("To"))
	require.Equal(t, "New Selling Submission", msg.Header.Get("Subject"))
	require.NotEmpty(t, msg.Header.Get("Message-ID"))

	require.Len(t, parts, 1)
	require.Equal(t, "text/plain", parts[0].contentType)
	require.Equal(t, "Name: Ada\nEmail: ada@example.com\nPhone: 555-0100", string(parts[0].content))
}

func TestBuildMIMEWithAttachments(t *testing.T) {
	png := bytes.Repeat([]byte{0x89, 'P', 'N', 'G'}, 100)
	jpg := []byte("jpeg-bytes")

	raw, err := BuildMIME(Message{
		From:     "shop@example.com",
		To:       "owner@example.com",
		ReplyTo:  "ada@example.com",
		Subject:  SubmissionSubject,
		TextBody: "body",
		Attachments: []Attachment{
			{Filename: "front.png", ContentType: "image/png", Content: png},
			{Filename: "back side.jpg", ContentType: "image/jpeg", Content: jpg},
		},
	})
	require.NoError(t, err)

	msg, parts := parseMIME(t, raw)
	require.Equal(t, "ada@example.com", msg.Header.Get("Reply-To"))

	require.Len(t, parts, 3)
	require.Equal(t, "text/plain", parts[0].contentType)
	require.Equal(t, "body", string(parts[0].content))

	require.Equal(t, "image/png", parts[1].contentType)
	require.Equal(t, "front.png", parts[1].filename)
	require.Equal(t, png, parts[1].content)

	require.Equal(t, "image/jpeg", parts[2].contentType)
	require.Equal(t, "back side.jpg", parts[2].filename)
	require.Equal(t, jpg, parts[2].content)
}

func TestBuildMIMEStripsHeaderInjection(t *testing.T) {
	raw, err := BuildMIME(Message{
		From:     "shop@example.com",
		To:       "owner@example.com",
		ReplyTo:  "ada@example.com\r\nBcc: victim@example.com",
		Subject:  "hi",
		TextBody: "body",
	})
	require.NoError(t, err)

	msg, _ := parseMIME(t, raw)
	require.Empty(t, msg.Header.Get("Bcc"))
}

func TestEncodeBase64WithLineBreaks(t *testing.T) {
	encoded := encodeBase64WithLineBreaks(bytes.Repeat([]byte("a"), 200))
	for _, line := range strings.Split(encoded, "\r\n") {
		require.LessOrEqual(t, len(line), 76)
	}
	require.Empty(t, encodeBase64WithLineBreaks(nil))
}
