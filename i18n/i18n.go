// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package i18n

import (
	"fmt"
	"net/http"

	"golang.org/x/text/language"
)

// MessageCatalog declares the interface to get globalized messages.
type MessageCatalog interface {
	GetMessage(ID string, tag language.Tag, v ...any) string
	GetLangFromRequest(r *http.Request) language.Tag
}

// GetMessage is a helper func to get the translated message based on
// the message ID and lang. If no matching message is found, it uses
// ID as the message itself.
func GetMessage(c MessageCatalog, id string, tag language.Tag, v ...any) string {
	return GetMessageOrDefault(c, id, tag, id, v...)
}

// GetMessageOrDefault is a helper func to get the translated message based on
// the message ID and lang. If no matching message is found, it returns the
// 'def' message.
func GetMessageOrDefault(c MessageCatalog, id string, tag language.Tag, def string, v ...any) string {
	if c != nil {
		if s := c.GetMessage(id, tag, v...); s != id {
			return s
		}
	}

	return def
}

// GetLangFromRequest is a helper func to get the language tag based on the
// HTTP request and the constructed message catalog.
func GetLangFromRequest(c MessageCatalog, r *http.Request) language.Tag {
	if c != nil {
		return c.GetLangFromRequest(r)
	}

	return language.English
}

// NewDefaultMessageCatalog creates a MessageCatalog backed by a static map of
// language tag to message ID to format string.
func NewDefaultMessageCatalog(messages map[language.Tag]map[string]string) MessageCatalog {
	return &defaultMessageCatalog{
		messages: messages,
		matcher:  language.NewMatcher(tags(messages)),
	}
}

type defaultMessageCatalog struct {
	messages map[language.Tag]map[string]string
	matcher  language.Matcher
}

func (c *defaultMessageCatalog) GetMessage(id string, tag language.Tag, v ...any) string {
	if msgs, ok := c.messages[tag]; ok {
		if format, ok := msgs[id]; ok {
			if len(v) == 0 {
				return format
			}

			return fmt.Sprintf(format, v...)
		}
	}

	return id
}

func (c *defaultMessageCatalog) GetLangFromRequest(r *http.Request) language.Tag {
	if r == nil {
		return language.English
	}

	tag, _ := language.MatchStrings(c.matcher, r.Header.Get("Accept-Language"))

	return tag
}

func tags(messages map[language.Tag]map[string]string) []language.Tag {
	t := make([]language.Tag, 0, len(messages)+1)
	t = append(t, language.English)

	for tag := range messages {
		if tag != language.English {
			t = append(t, tag)
		}
	}

	return t
}
