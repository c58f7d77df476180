package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"tasklist/internal/lists"
	"tasklist/internal/tasks"
)

// Lists fetches the user's lists. The sort key is passed through to the
// server ("created", "-created", "title", or empty for the default).
func (c *Client) Lists(ctx context.Context, sort string) ([]lists.List, error) {
	var out []lists.List
	if err := c.doJSON(ctx, http.MethodGet, "/lists"+sortQuery(sort), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateList creates a list with the given title.
func (c *Client) CreateList(ctx context.Context, title string) (*lists.List, error) {
	var out lists.List
	if err := c.doJSON(ctx, http.MethodPost, "/lists", lists.CreateListRequest{Title: title}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateList renames a list.
func (c *Client) UpdateList(ctx context.Context, listID, title string) (*lists.List, error) {
	var out lists.List
	if err := c.doJSON(ctx, http.MethodPatch, "/lists/"+listID, lists.UpdateListRequest{Title: title}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteList removes a list and all of its tasks.
func (c *Client) DeleteList(ctx context.Context, listID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/lists/"+listID, nil, nil)
}

// Tasks fetches the tasks of a list.
func (c *Client) Tasks(ctx context.Context, listID, sort string) ([]tasks.Task, error) {
	var out []tasks.Task
	path := fmt.Sprintf("/lists/%s/tasks%s", listID, sortQuery(sort))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTask adds a task to a list.
func (c *Client) CreateTask(ctx context.Context, listID, title string) (*tasks.Task, error) {
	var out tasks.Task
	path := fmt.Sprintf("/lists/%s/tasks", listID)
	if err := c.doJSON(ctx, http.MethodPost, path, tasks.CreateTaskRequest{Title: title}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTask patches a task's title and/or completion state.
func (c *Client) UpdateTask(ctx context.Context, listID, taskID string, req tasks.UpdateTaskRequest) (*tasks.Task, error) {
	var out tasks.Task
	path := fmt.Sprintf("/lists/%s/tasks/%s", listID, taskID)
	if err := c.doJSON(ctx, http.MethodPatch, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, listID, taskID string) error {
	path := fmt.Sprintf("/lists/%s/tasks/%s", listID, taskID)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

func sortQuery(sort string) string {
	if sort == "" {
		return ""
	}
	return "?sort=" + sort
}

// doJSON sends an authenticated JSON request and decodes the response
// into out when out is non-nil.
func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}
