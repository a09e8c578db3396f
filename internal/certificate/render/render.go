// Package render turns a certificate record into the downloadable HTML
// document handed to the recipient. The document carries both printed codes
// and the verification URL so authenticity can be checked offline from the
// page alone.
package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"html/template"

	"certifica/internal/certificate/models"
	"certifica/internal/certificate/service"
	dErrors "certifica/pkg/domain-errors"
)

// HTMLRenderer renders certificates from a parsed template.
type HTMLRenderer struct {
	tmpl *template.Template
}

var _ service.Renderer = (*HTMLRenderer)(nil)

// NewHTML creates a renderer with the built-in certificate template.
func NewHTML() *HTMLRenderer {
	return &HTMLRenderer{
		tmpl: template.Must(template.New("certificate").Parse(certificateTemplate)),
	}
}

type templateData struct {
	Record          models.CertificateRecord
	EventDate       string
	IssuanceDate    string
	LogoDataURI     template.URL
	QRDataURI       template.URL
	VerificationURL string
}

// Render executes the certificate template. Missing logo or QR assets drop
// their sections from the document instead of failing the render.
func (r *HTMLRenderer) Render(_ context.Context, record models.CertificateRecord, assets service.RenderAssets) ([]byte, error) {
	data := templateData{
		Record:          record,
		EventDate:       record.EventDateDisplay(),
		IssuanceDate:    record.IssuanceDateDisplay(),
		VerificationURL: record.VerificationURL,
	}
	if len(assets.Logo) > 0 {
		data.LogoDataURI = imageDataURI(assets.Logo)
	}
	if len(assets.QR) > 0 {
		data.QRDataURI = imageDataURI(assets.QR)
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeRenderFailed, "could not render certificate document")
	}
	return buf.Bytes(), nil
}

func imageDataURI(img []byte) template.URL {
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(img))
}

const certificateTemplate = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>Certificado - {{.Record.SubjectName}}</title>
<style>
  body { font-family: Georgia, serif; margin: 0; background: #f4f1ea; }
  .sheet { max-width: 900px; margin: 2rem auto; padding: 3rem 4rem; background: #fff;
           border: 6px double #2c3e50; }
  .logo { max-height: 90px; display: block; margin: 0 auto 1rem; }
  h1 { text-align: center; letter-spacing: 0.3em; color: #2c3e50; }
  .body-text { font-size: 1.2rem; line-height: 1.8; text-align: justify; }
  .subject { font-size: 1.6rem; font-weight: bold; }
  .notes { margin-top: 1rem; font-style: italic; }
  .footer { margin-top: 3rem; display: flex; justify-content: space-between;
            align-items: flex-end; font-size: 0.8rem; color: #555; }
  .codes div { margin-top: 0.2rem; }
  .qr { max-height: 110px; }
</style>
</head>
<body>
<div class="sheet">
  {{if .LogoDataURI}}<img class="logo" src="{{.LogoDataURI}}" alt="{{.Record.Institution}}">{{end}}
  <h1>CERTIFICADO</h1>
  <p class="body-text">
    Certificamos que <span class="subject">{{.Record.SubjectName}}</span>
    participou do evento <strong>{{.Record.EventName}}</strong>, promovido por
    <strong>{{.Record.Institution}}</strong>, na condição de
    <strong>{{.Record.Role}}</strong>, realizado em {{.EventDate}}{{if .Record.City}},
    em {{.Record.City}}{{end}}, com carga horária de
    <strong>{{.Record.Workload}}</strong>.
  </p>
  {{if .Record.Notes}}<p class="notes">{{.Record.Notes}}</p>{{end}}
  <div class="footer">
    <div class="codes">
      <div>Código de rastreio: <strong>{{.Record.TrackingCode}}</strong></div>
      <div>Código de originalidade: <strong>{{.Record.OriginalityCode}}</strong></div>
      <div>Verifique em: {{.VerificationURL}}</div>
      <div>Emitido em {{.IssuanceDate}}</div>
    </div>
    {{if .QRDataURI}}<img class="qr" src="{{.QRDataURI}}" alt="QR de verificação">{{end}}
  </div>
</div>
</body>
</html>
`
