// Copyright (C) 2024  Lukas Dietrich <lukas@lukasdietrich.com>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package delivery

import (
	"bytes"
	"html/template"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/mail"
	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"

	"github.com/lukasdietrich/briefsend/internal/crypto"
	"github.com/lukasdietrich/briefsend/internal/models"
)

// InlineImageID is the Content-ID of the embedded image, referenced by the html body as
// "cid:marketing_image".
const InlineImageID = "marketing_image"

var htmlBodyTemplate = template.Must(template.New("body").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; font-size: 14px; line-height: 1.6; color: #333333;">
<div class="email-body">
{{- range .Lines}}
{{.}}<br>
{{- end}}
</div>
{{- if .Image}}
<div class="marketing-image" style="margin-top: 20px;">
<img src="cid:{{.Image}}" alt="" style="max-width: 600px; width: 100%; height: auto;">
</div>
{{- end}}
</body>
</html>
`))

type inlineImage struct {
	filename    string
	contentType string
	data        []byte
}

// Composer renders outbound messages into mime documents. The plain text body is accompanied by
// an html alternative, optionally with an embedded image.
type Composer struct {
	idGen      crypto.IDGenerator
	senderName string
	image      *inlineImage
}

// NewComposer creates a new Composer. The image file, if configured, is read once.
func NewComposer(fs afero.Fs, idGen crypto.IDGenerator, opts ComposeOptions) (*Composer, error) {
	composer := Composer{
		idGen:      idGen,
		senderName: opts.SenderName,
	}

	if opts.Image != "" {
		data, err := afero.ReadFile(fs, opts.Image)
		if err != nil {
			return nil, err
		}

		composer.image = &inlineImage{
			filename:    path.Base(opts.Image),
			contentType: detectImageType(opts.Image, data),
			data:        data,
		}
	}

	return &composer, nil
}

func detectImageType(filename string, data []byte) string {
	if contentType := mime.TypeByExtension(path.Ext(filename)); contentType != "" {
		return contentType
	}

	return mimetype.Detect(data).String()
}

// Compose writes the message from the sender to w.
func (c *Composer) Compose(w io.Writer, from string, msg models.OutboundMessage, date time.Time) error {
	sender, err := models.Parse(from)
	if err != nil {
		return err
	}

	messageID, err := c.idGen.GenerateMessageID(sender.Domain())
	if err != nil {
		return err
	}

	var header mail.Header
	header.SetDate(date)
	header.SetAddressList("From", []*mail.Address{{Name: c.senderName, Address: from}})
	header.SetAddressList("To", []*mail.Address{{Address: msg.RecipientEmail}})
	header.SetSubject(msg.Subject)
	header.Set("Message-Id", messageID)
	header.Set("MIME-Version", "1.0")

	if c.image != nil {
		header.SetContentType("multipart/related", map[string]string{"type": "multipart/alternative"})
	} else {
		header.SetContentType("multipart/alternative", nil)
	}

	root, err := message.CreateWriter(w, header.Header)
	if err != nil {
		return err
	}

	if c.image != nil {
		if err := c.writeRelated(root, msg.Body); err != nil {
			return err
		}
	} else {
		if err := c.writeAlternatives(root, msg.Body, ""); err != nil {
			return err
		}
	}

	return root.Close()
}

func (c *Composer) writeRelated(root *message.Writer, body string) error {
	var alternativeHeader message.Header
	alternativeHeader.SetContentType("multipart/alternative", nil)

	alternative, err := root.CreatePart(alternativeHeader)
	if err != nil {
		return err
	}

	if err := c.writeAlternatives(alternative, body, InlineImageID); err != nil {
		return err
	}

	if err := alternative.Close(); err != nil {
		return err
	}

	var imageHeader message.Header
	imageHeader.SetContentType(c.image.contentType, nil)
	imageHeader.SetContentDisposition("inline", map[string]string{"filename": c.image.filename})
	imageHeader.Set("Content-Id", "<"+InlineImageID+">")
	imageHeader.Set("Content-Transfer-Encoding", "base64")

	return writePart(root, imageHeader, c.image.data)
}

func (c *Composer) writeAlternatives(parent *message.Writer, body, image string) error {
	var textHeader message.Header
	textHeader.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	textHeader.Set("Content-Transfer-Encoding", "quoted-printable")

	if err := writePart(parent, textHeader, []byte(body)); err != nil {
		return err
	}

	html, err := renderHTML(body, image)
	if err != nil {
		return err
	}

	var htmlHeader message.Header
	htmlHeader.SetContentType("text/html", map[string]string{"charset": "utf-8"})
	htmlHeader.Set("Content-Transfer-Encoding", "quoted-printable")

	return writePart(parent, htmlHeader, html)
}

func writePart(parent *message.Writer, header message.Header, data []byte) error {
	part, err := parent.CreatePart(header)
	if err != nil {
		return err
	}

	if _, err := part.Write(data); err != nil {
		part.Close()
		return err
	}

	return part.Close()
}

// renderHTML escapes the plain text body and keeps its line breaks.
func renderHTML(body, image string) ([]byte, error) {
	var buf bytes.Buffer

	err := htmlBodyTemplate.Execute(&buf, struct {
		Lines []string
		Image string
	}{
		Lines: strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n"),
		Image: image,
	})

	return buf.Bytes(), err
}
