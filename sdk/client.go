package sdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/everFinance/dotxch/resolver"
	"github.com/everFinance/dotxch/schema"
	"github.com/everFinance/dotxch/types"
	"gopkg.in/h2non/gentleman.v2"
	"strconv"
)

type Client struct {
	SCli *gentleman.Client
}

func New(url string) *Client {
	return &Client{
		SCli: gentleman.New().URL(url),
	}
}

// Resolve asks the service for the current record of name. A nil gracePeriod uses the server default.
func (c *Client) Resolve(name string, launcherID *types.Bytes32, gracePeriod *bool) (resolver.ResolutionResult, error) {
	req := c.SCli.Get()
	req.Path("/resolve")
	req.AddQuery("domain_name", name)
	if launcherID != nil {
		req.AddQuery("launcher_id", launcherID.Hex())
	}
	if gracePeriod != nil {
		req.AddQuery("grace_period", strconv.FormatBool(*gracePeriod))
	}
	res := resolver.ResolutionResult{}
	err := c.getJSON(req, &res)
	return res, err
}

func (c *Client) Info() (schema.RespInfo, error) {
	req := c.SCli.Get()
	req.Path("/info")
	info := schema.RespInfo{}
	err := c.getJSON(req, &info)
	return info, err
}

func (c *Client) History(name string) (schema.RespHistory, error) {
	req := c.SCli.Get()
	req.Path(fmt.Sprintf("/domains/%s/history", name))
	hist := schema.RespHistory{}
	err := c.getJSON(req, &hist)
	return hist, err
}

func (c *Client) Watch(name string) error {
	req := c.SCli.Post()
	req.Path("/watch")
	req.JSON(schema.ReqWatch{DomainName: name})
	return c.getJSON(req, nil)
}

func (c *Client) Unwatch(name string) error {
	req := c.SCli.Delete()
	req.Path(fmt.Sprintf("/watch/%s", name))
	return c.getJSON(req, nil)
}

func (c *Client) getJSON(req *gentleman.Request, out interface{}) error {
	resp, err := req.Send()
	if err != nil {
		return err
	}
	defer resp.Close()
	if !resp.Ok {
		return respError(resp)
	}
	if out == nil {
		return nil
	}
	return resp.JSON(out)
}

// respError prefers the service's error body and falls back to the raw response.
func respError(resp *gentleman.Response) error {
	body := resp.Bytes()
	re := schema.RespErr{}
	if err := json.Unmarshal(body, &re); err == nil && re.Err != "" {
		return &StatusError{Code: resp.StatusCode, Err: re}
	}
	return &StatusError{Code: resp.StatusCode, Err: errors.New(string(body))}
}

type StatusError struct {
	Code int
	Err  error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("resp failed.http code: %d, errMsg:%s", e.Code, e.Err.Error())
}

func (e *StatusError) Unwrap() error { return e.Err }
