package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Global-Edge-English/anki-connect/internal/domain"
	"github.com/Global-Edge-English/anki-connect/pkg/code"
)

// searchTerm 查询语言的单个条件
type searchTerm struct {
	key   string
	value string
}

// parseSearchQuery 解析查询串
// 支持 deck: tag: is: cid: nid: 前缀与自由文本, 引号包裹的值可含空格
func parseSearchQuery(query string) []searchTerm {
	var terms []searchTerm
	var cur strings.Builder
	inQuote := false

	flush := func() {
		token := cur.String()
		cur.Reset()
		if token == "" {
			return
		}
		key, value := "", token
		if idx := strings.Index(token, ":"); idx > 0 {
			prefix := strings.ToLower(token[:idx])
			switch prefix {
			case "deck", "tag", "is", "cid", "nid":
				key = prefix
				value = token[idx+1:]
			}
		}
		value = strings.Trim(value, `"`)
		if value == "" {
			return
		}
		terms = append(terms, searchTerm{key: key, value: value})
	}

	for _, r := range query {
		switch {
		case r == '"':
			inQuote = !inQuote
			cur.WriteRune(r)
		case r == ' ' && !inQuote:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return terms
}

// Find 按查询语言检索笔记 ID, 多个条件取交集
func (s *noteService) Find(ctx context.Context, profile string, query string) ([]int64, error) {
	terms := parseSearchQuery(query)

	var result map[int64]struct{}
	intersect := func(ids map[int64]struct{}) {
		if result == nil {
			result = ids
			return
		}
		for id := range result {
			if _, ok := ids[id]; !ok {
				delete(result, id)
			}
		}
	}

	for _, term := range terms {
		ids, err := s.evalTerm(ctx, profile, term)
		if err != nil {
			return nil, err
		}
		intersect(ids)
		if len(result) == 0 {
			return []int64{}, nil
		}
	}

	// 空查询匹配全部笔记
	if result == nil {
		notes, err := s.repo.ListAll(ctx, profile)
		if err != nil {
			return nil, code.ErrorServerInternal.WithDetails(err.Error())
		}
		result = make(map[int64]struct{}, len(notes))
		for _, n := range notes {
			result[n.ID] = struct{}{}
		}
	}

	out := make([]int64, 0, len(result))
	for id := range result {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (s *noteService) evalTerm(ctx context.Context, profile string, term searchTerm) (map[int64]struct{}, error) {
	switch term.key {
	case "deck":
		return s.notesInDeck(ctx, profile, term.value)
	case "tag":
		return s.notesWithTag(ctx, profile, term.value)
	case "is":
		return s.notesByState(ctx, profile, term.value)
	case "cid":
		id, err := strconv.ParseInt(term.value, 10, 64)
		if err != nil {
			return map[int64]struct{}{}, nil
		}
		card, err := s.cards.GetByID(ctx, profile, id)
		if err != nil {
			return nil, code.ErrorServerInternal.WithDetails(err.Error())
		}
		if card == nil {
			return map[int64]struct{}{}, nil
		}
		return map[int64]struct{}{card.NoteID: {}}, nil
	case "nid":
		id, err := strconv.ParseInt(term.value, 10, 64)
		if err != nil {
			return map[int64]struct{}{}, nil
		}
		note, err := s.repo.GetByID(ctx, profile, id)
		if err != nil {
			return nil, code.ErrorServerInternal.WithDetails(err.Error())
		}
		if note == nil {
			return map[int64]struct{}{}, nil
		}
		return map[int64]struct{}{note.ID: {}}, nil
	default:
		return s.notesWithText(ctx, profile, term.value)
	}
}

// notesInDeck 返回牌组及其子级里的笔记
func (s *noteService) notesInDeck(ctx context.Context, profile string, deckName string) (map[int64]struct{}, error) {
	decks, err := s.deckRepo.List(ctx, profile)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	out := make(map[int64]struct{})
	for _, d := range decks {
		if d.Name != deckName && !strings.HasPrefix(d.Name, deckName+domain.DeckNameSeparator) {
			continue
		}
		cards, err := s.cards.ListByDeck(ctx, profile, d.ID)
		if err != nil {
			return nil, code.ErrorServerInternal.WithDetails(err.Error())
		}
		for _, c := range cards {
			out[c.NoteID] = struct{}{}
		}
	}
	return out, nil
}

func (s *noteService) notesWithTag(ctx context.Context, profile string, tag string) (map[int64]struct{}, error) {
	notes, err := s.repo.FindByTag(ctx, profile, tag)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	out := make(map[int64]struct{}, len(notes))
	for _, n := range notes {
		out[n.ID] = struct{}{}
	}
	return out, nil
}

// notesByState 按卡片状态过滤: is:new / is:due / is:suspended
func (s *noteService) notesByState(ctx context.Context, profile string, state string) (map[int64]struct{}, error) {
	notes, err := s.repo.ListAll(ctx, profile)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	now := time.Now()
	cutoff := s.scheduler.DayCutoff(now)

	out := make(map[int64]struct{})
	for _, n := range notes {
		cards, err := s.cards.ListByNote(ctx, profile, n.ID)
		if err != nil {
			return nil, code.ErrorServerInternal.WithDetails(err.Error())
		}
		for _, c := range cards {
			match := false
			switch strings.ToLower(state) {
			case "new":
				match = c.IsNew()
			case "due":
				match = !c.IsSuspended() && !c.IsNew() && c.IsDue(cutoff, now.Unix())
			case "suspended":
				match = c.IsSuspended()
			}
			if match {
				out[n.ID] = struct{}{}
				break
			}
		}
	}
	return out, nil
}

// notesWithText 自由文本匹配任意字段值, 大小写不敏感
func (s *noteService) notesWithText(ctx context.Context, profile string, text string) (map[int64]struct{}, error) {
	notes, err := s.repo.ListAll(ctx, profile)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	needle := strings.ToLower(text)
	out := make(map[int64]struct{})
	for _, n := range notes {
		for _, v := range n.FieldValues {
			if strings.Contains(strings.ToLower(v), needle) {
				out[n.ID] = struct{}{}
				break
			}
		}
	}
	return out, nil
}
