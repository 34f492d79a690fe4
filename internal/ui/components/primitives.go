package components

import (
	"github.com/a-h/templ"
)

// ButtonVariant selects a button's colors.
type ButtonVariant string

// Button variants.
const (
	ButtonPrimary   ButtonVariant = "primary"
	ButtonSecondary ButtonVariant = "secondary"
	ButtonOutline   ButtonVariant = "outline"
	ButtonGhost     ButtonVariant = "ghost"
	ButtonDanger    ButtonVariant = "danger"
)

// ButtonSize selects a button's padding.
type ButtonSize string

// Button sizes.
const (
	SizeSm ButtonSize = "sm"
	SizeMd ButtonSize = "md"
	SizeLg ButtonSize = "lg"
)

// ButtonProps configures Button.
type ButtonProps struct {
	ID       string
	Label    string
	Variant  ButtonVariant
	Size     ButtonSize
	Type     string
	Loading  bool
	Disabled bool
	Attrs    []Attr
}

// Button renders a button. A loading button is disabled and shows a spinner.
func Button(p ButtonProps) templ.Component {
	if p.Variant == "" {
		p.Variant = ButtonPrimary
	}
	if p.Size == "" {
		p.Size = SizeMd
	}
	if p.Type == "" {
		p.Type = "button"
	}
	return Fragment(func(h *HTML) {
		h.Rawf(`<button type="%s" class="btn btn-%s btn-%s"`, Esc(p.Type), p.Variant, p.Size)
		if p.ID != "" {
			h.Rawf(` id="%s"`, Esc(p.ID))
		}
		if p.Loading || p.Disabled {
			h.Raw(" disabled")
		}
		if p.Loading {
			h.Raw(` aria-busy="true"`)
		}
		writeAttrs(h, p.Attrs)
		h.Raw(">")
		if p.Loading {
			h.Raw(`<span class="spinner" aria-hidden="true"></span>`)
		}
		h.Text(p.Label)
		h.Raw("</button>")
	})
}

// InputProps configures Input.
type InputProps struct {
	ID          string
	Label       string
	Type        string
	Placeholder string
	Value       string
	Error       string
	Disabled    bool
	Attrs       []Attr
}

// Input renders a labelled input with optional error text.
func Input(p InputProps) templ.Component {
	if p.Type == "" {
		p.Type = "text"
	}
	return Fragment(func(h *HTML) {
		h.Raw(`<div class="field">`)
		if p.Label != "" {
			h.Rawf(`<label for="%s">%s</label>`, Esc(p.ID), Esc(p.Label))
		}
		class := "input"
		if p.Error != "" {
			class += " input-error"
		}
		h.Rawf(`<input id="%s" type="%s" class="%s"`, Esc(p.ID), Esc(p.Type), class)
		if p.Placeholder != "" {
			h.Rawf(` placeholder="%s"`, Esc(p.Placeholder))
		}
		if p.Value != "" {
			h.Rawf(` value="%s"`, Esc(p.Value))
		}
		if p.Disabled {
			h.Raw(" disabled")
		}
		writeAttrs(h, p.Attrs)
		h.Raw(">")
		if p.Error != "" {
			h.Rawf(`<p class="field-error">%s</p>`, Esc(p.Error))
		}
		h.Raw("</div>")
	})
}

// BadgeVariant selects a badge's colors.
type BadgeVariant string

// Badge variants.
const (
	BadgeDefault     BadgeVariant = "default"
	BadgeSecondary   BadgeVariant = "secondary"
	BadgeOutline     BadgeVariant = "outline"
	BadgeDestructive BadgeVariant = "destructive"
	BadgeSuccess     BadgeVariant = "success"
)

// Badge renders a small label.
func Badge(variant BadgeVariant, text string) templ.Component {
	if variant == "" {
		variant = BadgeDefault
	}
	return Fragment(func(h *HTML) {
		h.Rawf(`<span class="badge badge-%s">%s</span>`, variant, Esc(text))
	})
}

// Card renders a bordered panel. The title row is omitted when title is empty.
func Card(title string, body templ.Component) templ.Component {
	return Fragment(func(h *HTML) {
		h.Raw(`<section class="card">`)
		if title != "" {
			h.Rawf(`<header class="card-header"><h3 class="card-title">%s</h3></header>`, Esc(title))
		}
		h.Raw(`<div class="card-body">`)
		h.Render(body)
		h.Raw("</div></section>")
	})
}

// Alert renders a blocking error message.
func Alert(message string) templ.Component {
	return Fragment(func(h *HTML) {
		h.Rawf(`<div class="alert alert-error" role="alert">%s</div>`, Esc(message))
	})
}

// Text renders escaped text as a component.
func Text(s string) templ.Component {
	return Fragment(func(h *HTML) { h.Text(s) })
}
