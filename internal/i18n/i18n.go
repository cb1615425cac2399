// Package i18n resolves user-facing messages for the locales the service ships with.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Key identifies a localized message.
type Key string

const (
	KeyServiceUp              Key = "ws.test.ok"
	KeyInvalidRequest         Key = "error.json.data"
	KeyProcessingError        Key = "error.ocr.process"
	KeyProcessingErrorGeneric Key = "error.ocr.process.generic"
	KeyNotFound               Key = "error.not.found"
	KeyMethodNotAllowed       Key = "error.method.not.allowed"
	KeyPayloadTooLarge        Key = "error.payload.too.large"
	KeyInternal               Key = "error.internal"
	KeyUnavailable            Key = "error.unavailable"
)

// Localizer renders a message for the caller's locale.
// locale may be a single tag ("fr") or an Accept-Language header value.
type Localizer interface {
	Localize(locale string, key Key, args ...any) string
}

var messages = map[language.Tag]map[Key]string{
	language.English: {
		KeyServiceUp:              "The OCR web service is up.",
		KeyInvalidRequest:         "Invalid request data: filecontent (base64), fileextension and documenttype are required.",
		KeyProcessingError:        "An error occurred during OCR processing: %s",
		KeyProcessingErrorGeneric: "An error occurred during OCR processing.",
		KeyNotFound:               "Resource not found.",
		KeyMethodNotAllowed:       "Method not allowed.",
		KeyPayloadTooLarge:        "Request body too large.",
		KeyInternal:               "Internal server error.",
		KeyUnavailable:            "A dependency is unavailable.",
	},
	language.French: {
		KeyServiceUp:              "Le service web OCR est disponible.",
		KeyInvalidRequest:         "Données de la requête invalides : filecontent (base64), fileextension et documenttype sont obligatoires.",
		KeyProcessingError:        "Une erreur est survenue lors du traitement OCR : %s",
		KeyProcessingErrorGeneric: "Une erreur est survenue lors du traitement OCR.",
		KeyNotFound:               "Ressource introuvable.",
		KeyMethodNotAllowed:       "Méthode non autorisée.",
		KeyPayloadTooLarge:        "Corps de la requête trop volumineux.",
		KeyInternal:               "Erreur interne du serveur.",
		KeyUnavailable:            "Une dépendance est indisponible.",
	},
}

// Catalog is a Localizer backed by an x/text message catalog.
// It is immutable after construction and safe for concurrent use.
type Catalog struct {
	cat     *catalog.Builder
	matcher language.Matcher
	tags    []language.Tag
}

var _ Localizer = (*Catalog)(nil)

// New builds the catalog. defaultLocale is used when the caller's locale is empty or unsupported.
func New(defaultLocale string) (*Catalog, error) {
	def, err := language.Parse(defaultLocale)
	if err != nil {
		return nil, fmt.Errorf("parse default locale %q: %w", defaultLocale, err)
	}
	base, _ := def.Base()

	b := catalog.NewBuilder(catalog.Fallback(language.English))
	var tags []language.Tag
	for tag, msgs := range messages {
		for k, m := range msgs {
			if err := b.SetString(tag, string(k), m); err != nil {
				return nil, fmt.Errorf("set message %s/%s: %w", tag, k, err)
			}
		}
		if b2, _ := tag.Base(); b2 == base {
			tags = append([]language.Tag{tag}, tags...)
		} else {
			tags = append(tags, tag)
		}
	}
	if b0, _ := tags[0].Base(); b0 != base {
		return nil, fmt.Errorf("unsupported default locale %q", defaultLocale)
	}

	return &Catalog{
		cat:     b,
		matcher: language.NewMatcher(tags),
		tags:    tags,
	}, nil
}

// Localize formats key for the best supported match of locale.
func (c *Catalog) Localize(locale string, key Key, args ...any) string {
	p := message.NewPrinter(c.match(locale), message.Catalog(c.cat))
	return p.Sprintf(string(key), args...)
}

// Default returns the tag used when no locale matches.
func (c *Catalog) Default() language.Tag {
	return c.tags[0]
}

func (c *Catalog) match(locale string) language.Tag {
	if locale == "" {
		return c.tags[0]
	}
	prefs, _, err := language.ParseAcceptLanguage(locale)
	if err != nil || len(prefs) == 0 {
		return c.tags[0]
	}
	_, idx, _ := c.matcher.Match(prefs...)
	return c.tags[idx]
}
