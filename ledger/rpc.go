package ledger

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"github.com/everFinance/dotxch/common"
	"github.com/everFinance/dotxch/schema"
	"github.com/tidwall/gjson"
	"gopkg.in/h2non/gentleman.v2"
	"gopkg.in/h2non/gentleman.v2/plugins/timeout"
	gtls "gopkg.in/h2non/gentleman.v2/plugins/tls"
	"os"
	"strings"
	"time"
)

var log = common.NewLog("ledger")

var ErrRpc = errors.New("ledger_rpc_failed")

// NodeError is a request the service received and refused with success false.
// Transport failures and non-json answers are never a NodeError.
type NodeError struct {
	Path string
	Msg  string
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrRpc, e.Path, e.Msg)
}

func (e *NodeError) Unwrap() error { return ErrRpc }

// rpcClient posts json to a chia rpc service that authenticates clients by certificate.
type rpcClient struct {
	cli *gentleman.Client
}

func newRpcClient(url, certPath, keyPath, caPath string, reqTimeout time.Duration) (*rpcClient, error) {
	cli := gentleman.New().URL(url)
	if certPath != "" {
		cert, err := tls.LoadX509KeyPair(certPath, keyPath)
		if err != nil {
			return nil, err
		}
		conf := &tls.Config{Certificates: []tls.Certificate{cert}}
		if caPath != "" {
			pem, err := os.ReadFile(caPath)
			if err != nil {
				return nil, err
			}
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(pem) {
				return nil, fmt.Errorf("no certificate in %s", caPath)
			}
			conf.RootCAs = pool
			// node certificates are issued for "chia.net", not for the host we dial
			conf.ServerName = "chia.net"
		} else {
			conf.InsecureSkipVerify = true
		}
		cli.Use(gtls.Config(conf))
	}
	if reqTimeout > 0 {
		cli.Use(timeout.Request(reqTimeout))
	}
	return &rpcClient{cli: cli}, nil
}

func (c *rpcClient) call(ctx context.Context, path string, body interface{}) (gjson.Result, error) {
	req := c.cli.Post()
	req.AddPath("/" + path)
	req.Context.SetCancelContext(ctx)
	if body == nil {
		body = map[string]interface{}{}
	}
	req.JSON(body)
	resp, err := req.Send()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return gjson.Result{}, fmt.Errorf("%w: %s", schema.ErrLedgerTimeout, path)
		}
		return gjson.Result{}, fmt.Errorf("%w: %s: %v", ErrRpc, path, err)
	}
	defer resp.Close()

	raw := resp.Bytes()
	res := gjson.ParseBytes(raw)
	if resp.Ok && res.Get("success").Bool() {
		return res, nil
	}
	msg := res.Get("error").String()
	if !gjson.ValidBytes(raw) || !res.Get("success").Exists() || msg == "" {
		return res, fmt.Errorf("%w: %s: http %d: %s", ErrRpc, path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if strings.Contains(msg, "DOUBLE_SPEND") {
		return res, fmt.Errorf("%w: %s", schema.ErrDoubleSpend, msg)
	}
	return res, &NodeError{Path: path, Msg: msg}
}
