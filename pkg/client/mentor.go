package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"mentorhub/pkg/model"
)

type MentorClient struct {
	httpClient *HttpClient
}

func NewMentorClient(baseUrl string) *MentorClient {
	return &MentorClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *MentorClient) SetToken(token string) {
	c.httpClient.SetToken(token)
}

func (c *MentorClient) Apply(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/mentors", body)
}

func (c *MentorClient) Browse(search string, expertise []string, limit int, offset int64) (*Response, error) {
	q := url.Values{}
	if search != "" {
		q.Set("q", search)
	}
	if len(expertise) > 0 {
		q.Set("expertise", strings.Join(expertise, ","))
	}
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))

	path := "/api/v1/mentors?" + q.Encode()
	return c.httpClient.GET(path)
}

func (c *MentorClient) GetByID(id string) (*Response, error) {
	path := "/api/v1/mentors/" + url.PathEscape(id)
	return c.httpClient.GET(path)
}

func (c *MentorClient) UpdateOwnProfile(body any) (*Response, error) {
	return c.httpClient.PUT("/api/v1/me/mentor-profile", body)
}

func (c *MentorClient) ListForModeration(status string, limit int, offset int64) (*Response, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))

	path := "/api/v1/admin/mentors?" + q.Encode()
	return c.httpClient.GET(path)
}

func (c *MentorClient) Approve(mentorID string) (*Response, error) {
	path := "/api/v1/admin/mentors/" + url.PathEscape(mentorID) + "/approve"
	return c.httpClient.POST(path, map[string]any{})
}

func (c *MentorClient) Reject(mentorID, reason string) (*Response, error) {
	path := "/api/v1/admin/mentors/" + url.PathEscape(mentorID) + "/reject"
	return c.httpClient.POST(path, map[string]any{"reason": reason})
}

func (c *MentorClient) ApplyRaw(rawBody []byte) (*Response, error) {
	return c.httpClient.POSTRaw("/api/v1/mentors", rawBody)
}

func (c *MentorClient) DecodeProfile(resp *Response) (*model.MentorProfile, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode mentor wrapper:\n%+v\n%s", resp.ToString(), err)
	}

	var profile model.MentorProfile
	if err := json.Unmarshal(wrapper.Data, &profile); err != nil {
		return nil, fmt.Errorf("could not decode mentor json:\n%+v\n%s", resp.ToString(), err)
	}

	return &profile, nil
}

func (c *MentorClient) DecodeProfiles(resp *Response) ([]*model.MentorProfile, *Metadata, error) {
	var wrapper struct {
		Data       json.RawMessage `json:"data"`
		TotalCount int64           `json:"total_count"`
		Limit      int             `json:"limit"`
		Offset     int64           `json:"offset"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, nil, fmt.Errorf("could not decode paginated resp:\n%+v\n%s", resp.ToString(), err)
	}

	var profiles []*model.MentorProfile
	if err := json.Unmarshal(wrapper.Data, &profiles); err != nil {
		return nil, nil, fmt.Errorf("could not decode mentor list:\n%+v\n%s", resp.ToString(), err)
	}

	metadata := &Metadata{
		TotalCount: wrapper.TotalCount,
		Limit:      wrapper.Limit,
		Offset:     wrapper.Offset,
	}

	return profiles, metadata, nil
}
