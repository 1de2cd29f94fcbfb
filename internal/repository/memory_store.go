package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/hitoshi/tunelist/internal/model"
)

type memoryTxKey struct{}

// MemoryStore はPlaylistRepository・MembershipRepository・Transactorをメモリ上で実装する。
// ローカル開発とテストで使用する。
//
// WithinTxはトランザクション同士を直列化するが、ロールバックは行わない。
// fnの途中で失敗した場合、それまでの書き込みは残る。
type MemoryStore struct {
	txMu sync.Mutex

	mu          sync.RWMutex
	playlists   map[string]model.Playlist
	memberships map[string][]model.Membership // playlistID -> position昇順
}

// NewMemoryStore は空のMemoryStoreを生成する。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		playlists:   make(map[string]model.Playlist),
		memberships: make(map[string][]model.Membership),
	}
}

// WithinTx はfnを他のトランザクションと排他的に実行する。
func (s *MemoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memoryTxKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(context.WithValue(ctx, memoryTxKey{}, true))
}

// FindByID は指定IDのプレイリストを取得する。見つからない場合はnilを返す。
func (s *MemoryStore) FindByID(_ context.Context, id string) (*model.Playlist, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.playlists[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// FindByIDForUpdate はFindByIDと同じ。排他はWithinTxが担う。
func (s *MemoryStore) FindByIDForUpdate(ctx context.Context, id string) (*model.Playlist, error) {
	return s.FindByID(ctx, id)
}

// ListByOwner は所有者のプレイリストを返す。
func (s *MemoryStore) ListByOwner(_ context.Context, ownerID string) ([]*model.Playlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*model.Playlist
	for _, p := range s.playlists {
		if p.OwnerID == ownerID {
			p := p
			result = append(result, &p)
		}
	}
	return result, nil
}

// Create はプレイリストを作成する。
func (s *MemoryStore) Create(_ context.Context, p *model.Playlist) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.playlists[p.ID]; exists {
		return fmt.Errorf("プレイリストの作成に失敗しました: ID %s は既に存在します", p.ID)
	}
	s.playlists[p.ID] = *p
	return nil
}

// Delete はプレイリスト本体を削除する。曲登録が残っている場合はエラーを返す。
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.playlists[id]; !ok {
		return fmt.Errorf("プレイリストが見つかりません: %s", id)
	}
	if len(s.memberships[id]) > 0 {
		return fmt.Errorf("プレイリストの削除に失敗しました: 曲登録が %d 件残っています", len(s.memberships[id]))
	}
	delete(s.playlists, id)
	return nil
}

// ListByPlaylist はプレイリストの曲登録をOrder昇順で返す。
func (s *MemoryStore) ListByPlaylist(_ context.Context, playlistID string) ([]*model.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.memberships[playlistID]
	result := make([]*model.Membership, 0, len(src))
	for _, m := range src {
		m := m
		result = append(result, &m)
	}
	return result, nil
}

// CountByPlaylist はプレイリストの曲登録数を返す。
func (s *MemoryStore) CountByPlaylist(_ context.Context, playlistID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.memberships[playlistID]), nil
}

// FindBySong はプレイリスト内の指定曲の登録を返す。見つからない場合はnilを返す。
func (s *MemoryStore) FindBySong(_ context.Context, playlistID string, songID int64) (*model.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.memberships[playlistID] {
		if m.SongID == songID {
			m := m
			return &m, nil
		}
	}
	return nil, nil
}

// Append は曲登録を末尾に追加し、割り当てたOrderをmembershipに設定する。
func (s *MemoryStore) Append(_ context.Context, m *model.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.playlists[m.PlaylistID]; !ok {
		return fmt.Errorf("曲登録の追加に失敗しました: プレイリスト %s が存在しません", m.PlaylistID)
	}

	maxOrder := 0
	for _, existing := range s.memberships[m.PlaylistID] {
		if existing.SongID == m.SongID {
			return ErrDuplicateSong
		}
		if existing.Order > maxOrder {
			maxOrder = existing.Order
		}
	}

	m.Order = maxOrder + 1
	s.memberships[m.PlaylistID] = append(s.memberships[m.PlaylistID], *m)
	return nil
}

// DeleteBySong はプレイリスト内の指定曲の登録を削除する。
func (s *MemoryStore) DeleteBySong(_ context.Context, playlistID string, songID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.memberships[playlistID]
	for i, m := range list {
		if m.SongID == songID {
			s.memberships[playlistID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return ErrMembershipNotFound
}

// DeleteByPlaylist はプレイリストの曲登録を全て削除する。
func (s *MemoryStore) DeleteByPlaylist(_ context.Context, playlistID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(len(s.memberships[playlistID]))
	delete(s.memberships, playlistID)
	return n, nil
}

// compile-time interface check
var (
	_ PlaylistRepository   = (*MemoryStore)(nil)
	_ MembershipRepository = (*MemoryStore)(nil)
	_ Transactor           = (*MemoryStore)(nil)
)
