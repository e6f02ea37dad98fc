// Package store holds the asset state shared by the views and routes the
// fetch and delete requests to the storage service.
package store

import (
	"context"
	"fmt"
	"sync"

	"editor-assets/internal/api"
	"editor-assets/internal/infra/logx"
)

// AssetService is the remote storage the store talks to.
type AssetService interface {
	ListAssets(ctx context.Context) (api.AssetList, error)
	DeleteAsset(ctx context.Context, key string) error
}

// Asset is an uploaded file record. SketchID and SketchName are empty when
// the asset belongs to no sketch.
type Asset struct {
	Key        string
	Name       string
	URL        string
	Size       int64
	SketchID   string
	SketchName string
}

type User struct {
	Username string
}

type Assets struct {
	List      []Asset
	TotalSize int64
}

// State is an immutable snapshot; List is never shared with the store.
type State struct {
	User    User
	Assets  Assets
	Loading bool
	Err     error
}

type Store struct {
	svc AssetService
	log logx.Logger

	mu    sync.Mutex
	state State
	subs  map[int]chan State
	next  int
}

func New(svc AssetService, username string) *Store {
	return &Store{
		svc:   svc,
		log:   logx.With(logx.Fields{"component": "store"}),
		state: State{User: User{Username: username}, Assets: Assets{List: []Asset{}}},
		subs:  make(map[int]chan State),
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

// Subscribe returns a channel that always holds the latest state after a
// change; intermediate states may be skipped. The returned func
// unsubscribes and closes the channel.
func (s *Store) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	ch := make(chan State, 1)
	s.subs[id] = ch
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

// GetAssets fetches the collection and replaces the list. Loading is true
// while the request is in flight.
func (s *Store) GetAssets(ctx context.Context) error {
	s.update(func(st *State) {
		st.Loading = true
		st.Err = nil
	})

	list, err := s.svc.ListAssets(ctx)
	if err != nil {
		s.log.With(logx.Fields{"err": err}).Warnf("fetch assets failed")
		s.update(func(st *State) {
			st.Loading = false
			st.Err = err
		})
		return fmt.Errorf("get assets: %w", err)
	}

	assets := make([]Asset, 0, len(list.Assets))
	for _, a := range list.Assets {
		assets = append(assets, Asset{
			Key:        a.Key,
			Name:       a.Name,
			URL:        a.URL,
			Size:       max(a.Size, 0),
			SketchID:   a.SketchID,
			SketchName: a.SketchName,
		})
	}
	s.log.Debugf("fetched %d assets", len(assets))
	s.update(func(st *State) {
		st.Loading = false
		st.Assets = Assets{List: assets, TotalSize: list.TotalSize}
	})
	return nil
}

// DeleteAssetRequest deletes key remotely and drops it from the list.
// Failures are recorded in State.Err and returned; there is no retry here.
func (s *Store) DeleteAssetRequest(ctx context.Context, key string) error {
	log := s.log.With(logx.Fields{"key": key})
	if err := s.svc.DeleteAsset(ctx, key); err != nil {
		log.With(logx.Fields{"err": err}).Warnf("delete asset failed")
		s.update(func(st *State) { st.Err = err })
		return fmt.Errorf("delete asset %s: %w", key, err)
	}
	log.Infof("asset deleted")
	s.update(func(st *State) {
		st.Err = nil
		kept := make([]Asset, 0, len(st.Assets.List))
		for _, a := range st.Assets.List {
			if a.Key == key {
				st.Assets.TotalSize = max(st.Assets.TotalSize-a.Size, 0)
				continue
			}
			kept = append(kept, a)
		}
		st.Assets.List = kept
	})
	return nil
}

func (s *Store) update(fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
	snap := s.copyLocked()
	for _, ch := range s.subs {
		// latest wins
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

func (s *Store) copyLocked() State {
	out := s.state
	out.Assets.List = make([]Asset, len(s.state.Assets.List))
	copy(out.Assets.List, s.state.Assets.List)
	return out
}
