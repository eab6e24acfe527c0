// Package notification renders queue envelopes into destination-specific
// webhook payloads. Two formats exist: a generic JSON envelope, and a
// Discord embed for destinations on discord.com.
package notification

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/workpoint-hq/webhook-svc/internal/events"
)

// Format identifies the wire shape a destination expects.
type Format int

const (
	FormatStandard Format = iota
	FormatDiscord
)

// String returns the metric/log label for the format.
func (f Format) String() string {
	if f == FormatDiscord {
		return "discord"
	}
	return "standard"
}

// FormatFor picks the payload format for a destination URL. Discord webhook
// URLs get the embed format; everything else gets the standard envelope.
func FormatFor(rawURL string) Format {
	u, err := url.Parse(rawURL)
	if err != nil {
		return FormatStandard
	}
	host := strings.ToLower(u.Hostname())
	if host == "discord.com" || strings.HasSuffix(host, ".discord.com") {
		return FormatDiscord
	}
	return FormatStandard
}

// Render produces the payload for the given format. Only the standard
// format can fail (when the inner payload document does not parse); the
// Discord renderer degrades to a plain-text fallback instead.
func Render(env events.Envelope, f Format) ([]byte, error) {
	if f == FormatDiscord {
		return RenderDiscord(env), nil
	}
	return RenderStandard(env)
}

// StandardPayload is the generic delivery shape: the original payload
// re-exposed as a native JSON object under "data".
type StandardPayload struct {
	EventType string    `json:"eventType"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// RenderStandard renders the flat envelope format.
func RenderStandard(env events.Envelope) ([]byte, error) {
	data, err := env.Payload()
	if err != nil {
		return nil, err
	}
	return json.Marshal(StandardPayload{
		EventType: env.EventType,
		Timestamp: env.CreatedAt,
		Data:      data,
	})
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Color       int            `json:"color"`
	Fields      []discordField `json:"fields"`
	Timestamp   string         `json:"timestamp"`
}

type discordPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

// Discord field limits.
const (
	maxFieldLen     = 1024
	maxCodeBlockLen = 1000
)

// RenderDiscord renders the embed format. It never fails: any problem with
// the payload degrades to a minimal content-only message so the dispatch
// loop can still report a clean outcome for this subscriber.
func RenderDiscord(env events.Envelope) []byte {
	embed, err := buildDiscordEmbed(env)
	if err != nil {
		fallback, _ := json.Marshal(map[string]string{
			"content": fmt.Sprintf("**%s**\nEvent could not be rendered. Check server logs.", eventTitle(env.EventType)),
		})
		return fallback
	}

	out, err := json.Marshal(discordPayload{Embeds: []discordEmbed{embed}})
	if err != nil {
		fallback, _ := json.Marshal(map[string]string{
			"content": fmt.Sprintf("**%s**\nEvent could not be rendered. Check server logs.", eventTitle(env.EventType)),
		})
		return fallback
	}
	return out
}

func buildDiscordEmbed(env events.Envelope) (discordEmbed, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(env.PayloadJSON), &data); err != nil {
		return discordEmbed{}, err
	}

	fields := []discordField{
		{Name: "Event Type", Value: env.EventType, Inline: true},
		{Name: "Date", Value: env.CreatedAt.Format("2006-01-02 15:04:05"), Inline: true},
	}

	if isErrorEvent(env.EventType) {
		fields = append(fields, errorFields(data)...)
	} else {
		pretty, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return discordEmbed{}, err
		}
		fields = append(fields, discordField{
			Name:   "Details",
			Value:  "```json\n" + Truncate(string(pretty), maxCodeBlockLen) + "\n```",
			Inline: false,
		})
	}

	return discordEmbed{
		Title:       eventTitle(env.EventType),
		Description: eventDescription(env.EventType),
		Color:       eventColor(env.EventType),
		Fields:      fields,
		Timestamp:   env.CreatedAt.Format(time.RFC3339),
	}, nil
}

func isErrorEvent(eventType string) bool {
	return strings.Contains(eventType, "error") || strings.Contains(eventType, "failed")
}

// errorFields extracts the well-known error sub-fields defensively: each is
// included only when present, and an unexpected value type never panics.
func errorFields(data map[string]any) []discordField {
	var fields []discordField

	if v, ok := data["errorType"]; ok {
		fields = append(fields, discordField{Name: "Error Type", Value: stringValue(v), Inline: true})
	}
	if v, ok := data["message"]; ok {
		fields = append(fields, discordField{Name: "Message", Value: Truncate(stringValue(v), maxFieldLen), Inline: false})
	}
	if v, ok := data["endpoint"]; ok {
		fields = append(fields, discordField{Name: "Endpoint", Value: stringValue(v), Inline: true})
	}
	if v, ok := data["statusCode"]; ok {
		fields = append(fields, discordField{Name: "Status Code", Value: stringValue(v), Inline: true})
	}

	return fields
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return "N/A"
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Truncate caps s at max bytes, marking the cut with a trailing ellipsis.
// The cut lands on a rune boundary so the result stays valid UTF-8, and it
// never exceeds max.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func eventTitle(eventType string) string {
	switch eventType {
	case events.TypeBookingCreated:
		return "New Booking Created"
	case events.TypeBookingUpdated:
		return "Booking Updated"
	case events.TypeBookingCancelled:
		return "Booking Cancelled"
	case events.TypeErrorOccurred:
		return "Critical Error"
	case events.TypeValidationFailed:
		return "Validation Failed"
	case events.TypeResourceNotFound:
		return "Resource Not Found"
	case events.TypeBusinessLogicError:
		return "Business Logic Error"
	default:
		return "New Event"
	}
}

func eventDescription(eventType string) string {
	switch eventType {
	case events.TypeBookingCreated:
		return "A new booking has been created in the system"
	case events.TypeBookingUpdated:
		return "An existing booking has been updated"
	case events.TypeBookingCancelled:
		return "A booking has been cancelled"
	case events.TypeErrorOccurred:
		return "A critical error occurred in the system"
	case events.TypeValidationFailed:
		return "Data validation failed"
	case events.TypeResourceNotFound:
		return "The requested resource was not found"
	case events.TypeBusinessLogicError:
		return "A business logic error occurred"
	default:
		return "A new event has been recorded"
	}
}

func eventColor(eventType string) int {
	switch eventType {
	case events.TypeBookingCreated:
		return 0x00FF00
	case events.TypeBookingUpdated:
		return 0x0099FF
	case events.TypeBookingCancelled:
		return 0xFF0000
	case events.TypeErrorOccurred:
		return 0xFF0000
	case events.TypeValidationFailed:
		return 0xFFCC00
	case events.TypeResourceNotFound:
		return 0xFF6600
	case events.TypeBusinessLogicError:
		return 0xFF9900
	default:
		return 0x808080
	}
}
