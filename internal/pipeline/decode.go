package pipeline

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"
	"github.com/ledongthuc/pdf"

	"subtrack/internal"
	"subtrack/internal/util"
)

// Decode turns a raw fetched message into the normalized form used for
// matching. It never fails: undecodable content degrades to best-effort
// text, an unparseable envelope degrades to the raw bytes.
func Decode(msg internal.FetchedMailMessage) internal.DecodedMessage {
	out := internal.DecodedMessage{
		Sender:     util.CleanText(msg.From),
		ReceivedAt: msg.ReceivedAt,
	}

	env, err := enmime.ReadEnvelope(bytes.NewReader(msg.Raw))
	if err != nil {
		out.Subject = util.CleanText(msg.Subject)
		out.Body = util.CleanText(string(msg.Raw))
		return out
	}

	// enmime decodes RFC2047 encoded-word subjects, trying the declared
	// charset before falling back to a permissive decode.
	subject := env.GetHeader("Subject")
	if subject == "" {
		subject = msg.Subject
	}
	out.Subject = util.CleanText(subject)

	body := env.Text
	if strings.TrimSpace(body) == "" && env.HTML != "" {
		body = htmlToText(env.HTML)
	}

	// Billing mails often carry the actual invoice only as a PDF
	// attachment; fold its text into the searchable body.
	for _, att := range env.Attachments {
		if !strings.HasSuffix(strings.ToLower(att.FileName), ".pdf") {
			continue
		}
		if text := pdfToText(att.Content); text != "" {
			body += " " + text
		}
	}

	out.Body = util.CleanText(body)
	return out
}

func htmlToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	doc.Find("script,style").Remove()
	return doc.Text()
}

func pdfToText(content []byte) string {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return ""
	}
	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString(" ")
	}
	return sb.String()
}
