package claim

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/launchfee/backend/internal/chain/eth"
	"github.com/launchfee/backend/pkg/enum"
	"github.com/launchfee/backend/pkg/xcontext"
)

// AppStatus is the lifecycle of the wallet session, not of any single claim.
type AppStatus string

var (
	AppStatusBooting    = enum.New(AppStatus("booting"))
	AppStatusConnecting = enum.New(AppStatus("connecting"))
	AppStatusReady      = enum.New(AppStatus("ready"))
	AppStatusNotInFrame = enum.New(AppStatus("not_in_frame"))
	AppStatusError      = enum.New(AppStatus("error"))
)

// Session owns the signer for the lifetime of the service. The signer is
// selected once at connect time, never re-detected per call.
type Session struct {
	client eth.EthClient

	mutex  sync.RWMutex
	status AppStatus
	signer eth.Signer
}

func NewSession(client eth.EthClient) *Session {
	return &Session{client: client, status: AppStatusBooting}
}

func (s *Session) Status() AppStatus {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.status
}

func (s *Session) Signer() eth.Signer {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.signer
}

func (s *Session) Wallet() common.Address {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if s.signer == nil {
		return common.Address{}
	}

	return s.signer.Address()
}

// Connect selects the signer and moves the session to ready. A failed
// selection leaves the session in error; Connect can be called again.
func (s *Session) Connect(ctx context.Context) error {
	s.setStatus(AppStatusConnecting)

	signer, err := eth.SelectSigner(ctx, s.client)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot select signer: %v", err)
		s.setStatus(AppStatusError)
		return err
	}

	s.mutex.Lock()
	s.signer = signer
	s.status = AppStatusReady
	s.mutex.Unlock()

	xcontext.Logger(ctx).Infof("Session ready with wallet %s", signer.Address())
	return nil
}

func (s *Session) setStatus(status AppStatus) {
	s.mutex.Lock()
	s.status = status
	s.mutex.Unlock()
}
