// File: client/renew.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package client

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/momentics/hioload-ua/api"
	"github.com/momentics/hioload-ua/internal/renewal"
	"github.com/momentics/hioload-ua/protocol"
)

// RenewSecureChannel renews the security token once 75% of its lifetime
// has elapsed. It is safe to call at any time and from any goroutine:
// below the threshold it returns api.RenewNotDue (status GoodCallAgain),
// while an exchange is outstanding it returns api.RenewInFlight, and
// otherwise it dispatches the renewal and returns api.RenewInitiated.
//
// A failed renewal marks the connection failed; no request callback is
// involved.
func (c *Client) RenewSecureChannel() (api.RenewOutcome, error) {
	c.lifecycle.RLock()
	drained := c.drained
	c.lifecycle.RUnlock()
	if drained {
		return api.RenewNotDue, api.ErrClientShutDown
	}

	out, err := c.renewal.Begin()
	if err != nil || out != api.RenewInitiated {
		return out, err
	}

	tok := c.renewal.Token()
	req := &protocol.OpenSecureChannelRequest{
		RequestType:       protocol.TokenRenew,
		RequestedLifetime: millis(c.cfg.RequestedLifetime),
	}
	id, err := c.dispatch(req, api.ShapeOf[*protocol.OpenSecureChannelResponse](), c.onRenewed, nil)
	if err != nil {
		c.failRenewal(err, protocol.StatusBadSecureChannelClosed)
		return out, fmt.Errorf("renew secure channel: %w", err)
	}
	c.renewal.Attach(id)
	c.metrics.ObserveRenewal("initiated")
	c.log.WithFields(logrus.Fields{
		"request_id": id,
		"token_id":   tok.TokenID,
		"expires_at": tok.ExpiresAt(),
	}).Info("secure channel renewal started")
	return out, nil
}

func (c *Client) onRenewed(id uint32, out api.Outcome) {
	if !out.OK() {
		c.failRenewal(out.Err(), out.Status)
		return
	}
	resp := out.Response.(*protocol.OpenSecureChannelResponse)
	tok := renewal.FromSecurityToken(resp.SecurityToken, c.clock.Now())
	c.renewal.Complete(tok)
	c.metrics.ObserveRenewal("renewed")
	c.log.WithFields(logrus.Fields{
		"request_id": id,
		"token_id":   tok.TokenID,
		"lifetime":   tok.Lifetime,
	}).Info("secure channel renewed")
	c.setState(api.ChannelOpen, protocol.StatusGood)
}

func (c *Client) failRenewal(err error, status protocol.StatusCode) {
	if !status.IsBad() {
		status = protocol.StatusBadSecureChannelClosed
	}
	c.renewal.Fail(err)
	c.metrics.ObserveRenewal("failed")
	c.log.WithError(err).WithField("status", status).Warn("secure channel renewal failed")
	c.setState(api.ChannelFailed, status)
}

func (c *Client) onRenewalTransition(tr renewal.Transition) {
	c.log.WithFields(logrus.Fields{"from": tr.From, "to": tr.To}).Debug("renewal state changed")
	if tr.To == api.RenewalInFlight {
		c.setState(api.ChannelRenewing, protocol.StatusGood)
	}
}
