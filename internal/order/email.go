package order

import (
	"bytes"
	htmltemplate "html/template"
	"math"
	"strconv"
	"strings"
	"text/template"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/lambriz/catalogbot/internal/mail"
)

const (
	orderSubjectPrefix = "Новая заявка №"
	feedbackSubject    = "Обратная связь"
	requestPriceLabel  = "Запрос цены"
)

const orderText = `Дата: {{.Created}}
Имя: {{.Name}}
Телефон: {{.Phone}}
Email: {{.Email}}
Telegram ID: {{.TelegramID}}
Способ связи: {{.ContactMethod}}
Комментарий: {{.Comment}}

Товары с ценой:
{{range .Priced}}- {{.Title}}, арт. {{.SKU}}, {{.Qty}} шт × {{.Price}} ₽
{{else}}- Нет
{{end}}
Запрос цены:
{{range .Requested}}- {{.Title}}, арт. {{.SKU}}, {{.Qty}} шт
{{else}}- Нет
{{end}}
Итого: {{.Total}}
`

const orderHTML = `<h2>Новая заявка с Mini App</h2>` +
	`<p><b>Дата:</b> {{.Created}}</p>` +
	`<h3>Контактные данные</h3>` +
	`<p><b>Имя:</b> {{.Name}}<br><b>Телефон:</b> {{.Phone}}<br><b>Email:</b> {{.Email}}<br>` +
	`<b>Telegram ID:</b> {{.TelegramID}}<br><b>Способ связи:</b> {{.ContactMethod}}<br>` +
	`<b>Комментарий:</b> {{.Comment}}</p>` +
	`<h3>Товары с ценой</h3><ul>` +
	`{{range .Priced}}<li>{{.Title}}, арт. {{.SKU}}, {{.Qty}} шт × {{.Price}} ₽</li>{{else}}<li>Нет</li>{{end}}` +
	`</ul><h3>Запрос цены</h3><ul>` +
	`{{range .Requested}}<li>{{.Title}}, арт. {{.SKU}}, {{.Qty}} шт</li>{{else}}<li>Нет</li>{{end}}` +
	`</ul><p><b>Итого:</b> {{.Total}}</p>`

const feedbackText = `Дата: {{.Created}}
Имя: {{.Name}}
Телефон: {{.Phone}}
Email: {{.Email}}
Telegram ID: {{.TelegramID}}
Способ связи: {{.ContactMethod}}
Комментарий: {{.Comment}}
`

const feedbackHTML = `<h2>Обратная связь</h2>` +
	`<p><b>Дата:</b> {{.Created}}</p>` +
	`<p><b>Имя:</b> {{.Name}}<br><b>Телефон:</b> {{.Phone}}<br><b>Email:</b> {{.Email}}<br>` +
	`<b>Telegram ID:</b> {{.TelegramID}}<br><b>Способ связи:</b> {{.ContactMethod}}<br>` +
	`<b>Комментарий:</b> {{.Comment}}</p>`

var (
	orderTextTmpl    = template.Must(template.New("order.txt").Parse(orderText))
	orderHTMLTmpl    = htmltemplate.Must(htmltemplate.New("order.html").Parse(orderHTML))
	feedbackTextTmpl = template.Must(template.New("feedback.txt").Parse(feedbackText))
	feedbackHTMLTmpl = htmltemplate.Must(htmltemplate.New("feedback.html").Parse(feedbackHTML))
)

type line struct {
	Title string
	SKU   string
	Qty   string
	Price string
}

type view struct {
	Created       string
	Name          string
	Phone         string
	Email         string
	TelegramID    string
	ContactMethod string
	Comment       string
	Priced        []line
	Requested     []line
	Total         string
}

// Renderer turns payloads into emails.
type Renderer struct {
	now func() time.Time
}

func NewRenderer() *Renderer {
	return &Renderer{now: time.Now}
}

// Render builds the feedback or the order email, depending on the request
// type.
func (r *Renderer) Render(p *Payload) (mail.Email, error) {
	if p.IsFeedback() {
		return r.Feedback(p)
	}
	return r.Order(p)
}

// Order renders an order email.
func (r *Renderer) Order(p *Payload) (mail.Email, error) {
	v := r.contact(p)
	v.Comment = p.Customer.Comment.Or("-")

	for _, i := range p.Priced() {
		v.Priced = append(v.Priced, itemLine(i))
	}
	requested := p.RequestPrice()
	for _, i := range requested {
		v.Requested = append(v.Requested, itemLine(i))
	}

	v.Total = p.TotalDisplay.Or(FormatPrice(string(p.Total)) + " ₽")
	if len(requested) > 0 {
		v.Total += " + " + requestPriceLabel
	}

	email := mail.Email{Subject: orderSubjectPrefix + p.ID.Or("-")}
	return render(email, v, orderTextTmpl, orderHTMLTmpl)
}

// Feedback renders a feedback email.
func (r *Renderer) Feedback(p *Payload) (mail.Email, error) {
	v := r.contact(p)
	v.Comment = p.Message.Or("-")

	return render(mail.Email{Subject: feedbackSubject}, v, feedbackTextTmpl, feedbackHTMLTmpl)
}

func (r *Renderer) contact(p *Payload) view {
	return view{
		Created:       p.CreatedAt.Or(r.now().UTC().Format("2006-01-02T15:04:05.000000")),
		Name:          p.Customer.Name.Or("-"),
		Phone:         p.Customer.Phone.Or("-"),
		Email:         p.Customer.Email.Or("-"),
		TelegramID:    p.TelegramID(),
		ContactMethod: p.Customer.ContactMethod.Or("-"),
	}
}

func render(email mail.Email, v view, text *template.Template, html *htmltemplate.Template) (mail.Email, error) {
	var buf bytes.Buffer
	if err := text.Execute(&buf, v); err != nil {
		return mail.Email{}, err
	}
	email.Text = buf.String()

	buf.Reset()
	if err := html.Execute(&buf, v); err != nil {
		return mail.Email{}, err
	}
	email.HTML = buf.String()

	return email, nil
}

func itemLine(i Item) line {
	return line{
		Title: i.Title.Or("-"),
		SKU:   i.SKU.Or("-"),
		Qty:   i.Qty.Or("1"),
		Price: FormatPrice(string(i.Price)),
	}
}

// FormatPrice rounds a price to whole rubles and groups thousands with
// spaces. Anything that is not a finite number formats as "0".
func FormatPrice(value string) string {
	num, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(num) || math.IsInf(num, 0) {
		return "0"
	}

	p := message.NewPrinter(language.English)
	s := p.Sprintf("%v", number.Decimal(num, number.Scale(0)))
	return strings.ReplaceAll(s, ",", " ")
}
