package client

import (
	"encoding/json"
	"fmt"
	"net/url"

	"mentorhub/pkg/model"
)

type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(baseUrl string) *BookingClient {
	return &BookingClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *BookingClient) SetToken(token string) {
	c.httpClient.SetToken(token)
}

func (c *BookingClient) Request(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/bookings", body)
}

func (c *BookingClient) RequestWithIdempotencyKey(body any, key string) (*Response, error) {
	return c.httpClient.POSTWithHeaders("/api/v1/bookings", body, map[string]string{
		"Idempotency-Key": key,
	})
}

func (c *BookingClient) List(role, filter, search string, limit int, offset int64) (*Response, error) {
	q := url.Values{}
	if role != "" {
		q.Set("role", role)
	}
	if filter != "" {
		q.Set("filter", filter)
	}
	if search != "" {
		q.Set("q", search)
	}
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))

	path := "/api/v1/bookings?" + q.Encode()
	return c.httpClient.GET(path)
}

func (c *BookingClient) GetByID(id string) (*Response, error) {
	path := "/api/v1/bookings/" + url.PathEscape(id)
	return c.httpClient.GET(path)
}

func (c *BookingClient) Confirm(id string, version int64) (*Response, error) {
	return c.action(id, "confirm", map[string]any{"booking_version": version})
}

func (c *BookingClient) Decline(id string, version int64, reason string) (*Response, error) {
	return c.action(id, "decline", map[string]any{
		"booking_version": version,
		"reason":          reason,
	})
}

func (c *BookingClient) Cancel(id string, version int64, reason string) (*Response, error) {
	return c.action(id, "cancel", map[string]any{
		"booking_version": version,
		"reason":          reason,
	})
}

func (c *BookingClient) AddMeetingLink(id string, version int64, link string) (*Response, error) {
	return c.action(id, "meeting-link", map[string]any{
		"booking_version": version,
		"meeting_link":    link,
	})
}

func (c *BookingClient) AddFeedback(id string, version int64, rating int, feedback string) (*Response, error) {
	return c.action(id, "feedback", map[string]any{
		"booking_version": version,
		"rating":          rating,
		"feedback":        feedback,
	})
}

func (c *BookingClient) RequestRaw(rawBody []byte) (*Response, error) {
	return c.httpClient.POSTRaw("/api/v1/bookings", rawBody)
}

func (c *BookingClient) action(id, action string, body any) (*Response, error) {
	path := "/api/v1/bookings/" + url.PathEscape(id) + "/" + action
	return c.httpClient.POST(path, body)
}

func (c *BookingClient) DecodeBooking(resp *Response) (*model.Booking, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode booking wrapper:\n%+v\n%s", resp.ToString(), err)
	}

	var booking model.Booking
	if err := json.Unmarshal(wrapper.Data, &booking); err != nil {
		return nil, fmt.Errorf("could not decode booking json:\n%+v\n%s", resp.ToString(), err)
	}

	return &booking, nil
}

func (c *BookingClient) DecodeBookings(resp *Response) ([]*model.Booking, *Metadata, error) {
	var wrapper struct {
		Data       json.RawMessage `json:"data"`
		TotalCount int64           `json:"total_count"`
		Limit      int             `json:"limit"`
		Offset     int64           `json:"offset"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, nil, fmt.Errorf("could not decode paginated resp:\n%+v\n%s", resp.ToString(), err)
	}

	var bookings []*model.Booking
	if err := json.Unmarshal(wrapper.Data, &bookings); err != nil {
		return nil, nil, fmt.Errorf("could not decode booking list:\n%+v\n%s", resp.ToString(), err)
	}

	metadata := &Metadata{
		TotalCount: wrapper.TotalCount,
		Limit:      wrapper.Limit,
		Offset:     wrapper.Offset,
	}

	return bookings, metadata, nil
}
