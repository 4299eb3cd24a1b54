// SPDX-License-Identifier: AGPL-3.0-only

// Package format renders fetched documents into tweet-sized messages.
// Every function is pure: no I/O, no clock access beyond the passed-in
// timestamp, and a malformed document always degrades to a fixed fallback
// instead of an error.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MaxTitleLength bounds a news headline before the rest of the message is
// composed around it.
const MaxTitleLength = 200

const timestampLayout = "02/01/2006 15:04"

var weatherEmojis = map[string]string{
	"clear":        "☀️",
	"clouds":       "☁️",
	"rain":         "🌧️",
	"drizzle":      "🌦️",
	"thunderstorm": "⛈️",
	"snow":         "❄️",
	"mist":         "🌫️",
	"fog":          "🌫️",
	"haze":         "🌫️",
}

var currencyEmojis = map[string]string{
	"USD": "💵",
	"EUR": "💶",
	"ARS": "🇦🇷",
	"BRL": "🇧🇷",
	"GBP": "💷",
	"JPY": "💴",
}

// Weather renders the current-weather document from OpenWeatherMap.
func Weather(doc map[string]any, now time.Time) string {
	if doc == nil {
		return "❌ No se pudo obtener información del clima"
	}

	city := getString(doc, "name")
	if city == "" {
		city = "Ciudad"
	}

	main, ok := getMap(doc, "main")
	if !ok {
		return "❌ Error al formatear información del clima"
	}
	temp, okTemp := getFloat(main, "temp")
	feelsLike, okFeels := getFloat(main, "feels_like")
	humidity, okHum := getFloat(main, "humidity")
	if !okTemp || !okFeels || !okHum {
		return "❌ Error al formatear información del clima"
	}

	conditions, ok := getSlice(doc, "weather")
	if !ok || len(conditions) == 0 {
		return "❌ Error al formatear información del clima"
	}
	condition, ok := conditions[0].(map[string]any)
	if !ok {
		return "❌ Error al formatear información del clima"
	}
	description := titleCase(getString(condition, "description"))

	emoji, ok := weatherEmojis[strings.ToLower(getString(condition, "main"))]
	if !ok {
		emoji = "🌤️"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s Clima en %s\n", emoji, city)
	fmt.Fprintf(&b, "🌡️ %s°C (sensación: %s°C)\n", formatNumber(temp), formatNumber(feelsLike))
	fmt.Fprintf(&b, "💧 Humedad: %s%%\n", formatNumber(humidity))
	fmt.Fprintf(&b, "☁️ %s\n", description)
	fmt.Fprintf(&b, "📅 %s", now.Format(timestampLayout))
	return b.String()
}

// Currency renders an exchange-rate document. The rate is rounded to two
// decimals; USD/ARS gets the informal-market annotation.
func Currency(doc map[string]any, from, to string, now time.Time) string {
	if doc == nil {
		return fmt.Sprintf("❌ No se pudo obtener cotización %s/%s", from, to)
	}

	rate, ok := getFloat(doc, "conversion_rate")
	if !ok {
		rate, ok = getFloat(doc, "rate")
	}
	if !ok || rate == 0 {
		return fmt.Sprintf("❌ Datos de cotización inválidos para %s/%s", from, to)
	}

	fromEmoji, ok := currencyEmojis[from]
	if !ok {
		fromEmoji = "💰"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s Cotización %s/%s\n", fromEmoji, from, to)
	fmt.Fprintf(&b, "💱 1 %s = %.2f %s\n", from, rate, to)
	if from == "USD" && to == "ARS" {
		b.WriteString("💸 Dólar Blue estimado\n")
	}
	fmt.Fprintf(&b, "📅 %s", now.Format(timestampLayout))
	return b.String()
}

// News renders the first article of a top-headlines document.
func News(doc map[string]any) string {
	if doc == nil {
		return "❌ No se pudieron obtener noticias"
	}

	articles, ok := getSlice(doc, "articles")
	if !ok || len(articles) == 0 {
		return "❌ No se pudieron obtener noticias"
	}
	article, ok := articles[0].(map[string]any)
	if !ok {
		return "❌ Error al formatear noticias"
	}

	title := getString(article, "title")
	if title == "" {
		return "❌ Error al formatear noticias"
	}
	title = TruncateTitle(title, MaxTitleLength)

	source := "Fuente"
	if sourceMap, ok := getMap(article, "source"); ok {
		if name := getString(sourceMap, "name"); name != "" {
			source = name
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📰 %s\n", title)
	fmt.Fprintf(&b, "🔗 Fuente: %s\n", source)
	if url := getString(article, "url"); url != "" {
		b.WriteString("\n" + url)
	}
	return b.String()
}

// TruncateTitle cuts oversized text to limit runes, the last three of which
// become the ellipsis marker.
func TruncateTitle(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// titleCase mirrors Python's str.title over space-separated words.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		if len(runes) > 0 {
			runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

func getMap(doc map[string]any, key string) (map[string]any, bool) {
	v, ok := doc[key].(map[string]any)
	return v, ok
}

func getSlice(doc map[string]any, key string) ([]any, bool) {
	v, ok := doc[key].([]any)
	return v, ok
}

func getString(doc map[string]any, key string) string {
	v, _ := doc[key].(string)
	return v
}

func getFloat(doc map[string]any, key string) (float64, bool) {
	switch v := doc[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}
