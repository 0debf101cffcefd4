// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package mailer

import (
	"fmt"
	"io"
	"strings"
	"time"

	g "github.com/maragudk/gomponents"
	. "github.com/maragudk/gomponents/html"
)

// Shop details printed in customer-facing mail.
const (
	ShopName    = "Mobile Doctor"
	ShopTagline = "Professional Mobile Repair Services"
	ShopPhone   = "+91 99929 19688"
	ShopAddress = "81, Ganesh Market, Bhamashah Nagar, Hisar, Haryana 125001"
	ShopOwner   = "Sunny Gujjar"
	ShopHours   = "Monday - Saturday: 9:00 AM - 7:00 PM"
)

// Subjects of the contact-form emails.
const (
	CustomerSubject = "Thank you for contacting Mobile Doctor"
	AdminSubject    = "New Customer Inquiry - Mobile Doctor"
)

// Inquiry is the data a visitor submitted through the contact form.
type Inquiry struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Service    string
	Message    string
	ReceivedAt time.Time
}

func (i Inquiry) fullName() string {
	return strings.TrimSpace(i.FirstName + " " + i.LastName)
}

func render(n g.Node) (string, error) {
	var b strings.Builder
	if err := n.Render(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}

func page(children ...g.Node) g.Node {
	return Div(StyleAttr("font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f4f4f4;"),
		g.Group(children))
}

func banner(title, subtitle string) g.Node {
	return Div(StyleAttr("background-color: #1a1a1a; color: #00ffff; padding: 20px; text-align: center; border-radius: 10px;"),
		H1(StyleAttr("margin: 0; color: #00ffff;"), g.Text(title)),
		P(StyleAttr("margin: 10px 0; color: #ffffff;"), g.Text(subtitle)),
	)
}

func card(children ...g.Node) g.Node {
	return Div(StyleAttr("background-color: #ffffff; padding: 20px; margin-top: 20px; border-radius: 10px;"),
		g.Group(children))
}

func detailBox(children ...g.Node) g.Node {
	return Div(StyleAttr("background-color: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;"),
		g.Group(children))
}

func field(label, value string) g.Node {
	return P(Strong(g.Text(label+":")), g.Text(" "+value))
}

// multiline renders text with each newline turned into <br>, escaping the rest.
func multiline(text string) g.Node {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	return g.NodeFunc(func(w io.Writer) error {
		for i, line := range lines {
			if i > 0 {
				if err := Br().Render(w); err != nil {
					return err
				}
			}
			if err := g.Text(line).Render(w); err != nil {
				return err
			}
		}
		return nil
	})
}

func customerBody(in Inquiry, year int) g.Node {
	return page(
		banner(ShopName, ShopTagline),
		card(
			H2(StyleAttr("color: #333;"), g.Text("Thank you for contacting us!")),
			P(g.Textf("Dear %s,", in.fullName())),
			P(g.Text("We have received your inquiry and our team will get back to you within 24 hours.")),
			detailBox(
				H3(StyleAttr("margin-top: 0; color: #333;"), g.Text("Your Inquiry Details:")),
				field("Service Required", in.Service),
				P(Strong(g.Text("Message:")), g.Text(" "), multiline(in.Message)),
				field("Contact", in.Email+" | "+in.Phone),
			),
			P(g.Text("In the meantime, you can:")),
			Ul(
				Li(g.Text("Visit our website for more information")),
				Li(g.Text("Check our service prices")),
				Li(g.Text("Follow us on social media for updates")),
			),
			Div(StyleAttr("margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee;"),
				P(Strong(g.Text("Contact Information:"))),
				P(g.Text("📞 Phone: "+ShopPhone)),
				P(g.Text("📍 Address: "+ShopAddress)),
				P(g.Text("👨‍💼 Owner: "+ShopOwner)),
				P(g.Text("🕒 Hours: "+ShopHours)),
			),
		),
		Div(StyleAttr("text-align: center; margin-top: 20px; color: #666;"),
			P(g.Textf("© %d %s. All rights reserved.", year, ShopName)),
		),
	)
}

func customerText(in Inquiry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", in.fullName())
	b.WriteString("We have received your inquiry and our team will get back to you within 24 hours.\n\n")
	b.WriteString("Your Inquiry Details:\n")
	fmt.Fprintf(&b, "Service Required: %s\n", in.Service)
	fmt.Fprintf(&b, "Message: %s\n", in.Message)
	fmt.Fprintf(&b, "Contact: %s | %s\n\n", in.Email, in.Phone)
	fmt.Fprintf(&b, "Phone: %s\nAddress: %s\nOwner: %s\nHours: %s\n", ShopPhone, ShopAddress, ShopOwner, ShopHours)
	return b.String()
}

func adminBody(in Inquiry) g.Node {
	return page(
		banner("New Customer Inquiry", "Mobile Doctor Website"),
		card(
			H2(StyleAttr("color: #333;"), g.Text("Customer Details:")),
			detailBox(
				field("Name", in.fullName()),
				field("Email", in.Email),
				field("Phone", in.Phone),
				field("Service Required", in.Service),
				P(Strong(g.Text("Message:"))),
				Div(StyleAttr("background-color: #ffffff; padding: 10px; border: 1px solid #ddd; border-radius: 3px;"),
					multiline(in.Message)),
			),
			field("Inquiry Date", in.ReceivedAt.Format("02 Jan 2006 15:04 MST")),
			Div(StyleAttr("margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee;"),
				P(g.Text("Please respond to this customer inquiry as soon as possible.")),
				P(g.Textf("You can contact them at: %s or %s", in.Email, in.Phone)),
			),
		),
	)
}

func adminText(in Inquiry) string {
	var b strings.Builder
	b.WriteString("New customer inquiry\n\n")
	fmt.Fprintf(&b, "Name: %s\nEmail: %s\nPhone: %s\nService Required: %s\n", in.fullName(), in.Email, in.Phone, in.Service)
	fmt.Fprintf(&b, "Message:\n%s\n\n", in.Message)
	fmt.Fprintf(&b, "Inquiry Date: %s\n", in.ReceivedAt.Format("02 Jan 2006 15:04 MST"))
	return b.String()
}
