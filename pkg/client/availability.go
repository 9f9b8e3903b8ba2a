package client

import (
	"encoding/json"
	"fmt"
	"net/url"

	"mentorhub/pkg/model"
)

type AvailabilityClient struct {
	httpClient *HttpClient
}

func NewAvailabilityClient(baseUrl string) *AvailabilityClient {
	return &AvailabilityClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *AvailabilityClient) SetToken(token string) {
	c.httpClient.SetToken(token)
}

func (c *AvailabilityClient) GetOwn() (*Response, error) {
	return c.httpClient.GET("/api/v1/availability")
}

func (c *AvailabilityClient) GetForMentor(mentorID string) (*Response, error) {
	path := "/api/v1/mentors/" + url.PathEscape(mentorID) + "/availability"
	return c.httpClient.GET(path)
}

func (c *AvailabilityClient) AddSlot(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/availability/slots", body)
}

func (c *AvailabilityClient) DeleteSlot(slotID string) (*Response, error) {
	path := "/api/v1/availability/slots/" + url.PathEscape(slotID)
	return c.httpClient.DELETE(path)
}

func (c *AvailabilityClient) Replace(slots []map[string]any, version int64) (*Response, error) {
	body := map[string]any{
		"slots":   slots,
		"version": version,
	}
	return c.httpClient.PUT("/api/v1/availability", body)
}

func (c *AvailabilityClient) ReplaceRaw(rawBody []byte) (*Response, error) {
	return c.httpClient.PUTRaw("/api/v1/availability", rawBody)
}

func (c *AvailabilityClient) DecodeAvailability(resp *Response) (*model.Availability, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode availability wrapper:\n%+v\n%s", resp.ToString(), err)
	}

	var view model.Availability
	if err := json.Unmarshal(wrapper.Data, &view); err != nil {
		return nil, fmt.Errorf("could not decode availability json:\n%+v\n%s", resp.ToString(), err)
	}

	return &view, nil
}

func (c *AvailabilityClient) DecodeSlot(resp *Response) (*model.AvailabilitySlot, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode slot wrapper:\n%+v\n%s", resp.ToString(), err)
	}

	var slot model.AvailabilitySlot
	if err := json.Unmarshal(wrapper.Data, &slot); err != nil {
		return nil, fmt.Errorf("could not decode slot json:\n%+v\n%s", resp.ToString(), err)
	}

	return &slot, nil
}
