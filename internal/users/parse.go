package users

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type snapshot struct {
	byID   map[string]*User
	byName map[string]*User
	order  []*User
}

func parse(b []byte) (*snapshot, error) {
	snap := &snapshot{byID: map[string]*User{}, byName: map[string]*User{}}
	if len(bytes.TrimSpace(b)) == 0 {
		return snap, nil
	}

	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse users: %w", err)
	}
	for i := range f.Users {
		u := f.Users[i]
		u.ID = strings.TrimSpace(u.ID)
		u.Name = strings.TrimSpace(u.Name)
		if u.ID == "" || u.Name == "" {
			return nil, fmt.Errorf("%w: entry %d needs id and name", ErrInvalidUser, i)
		}
		if _, ok := snap.byID[u.ID]; ok {
			return nil, fmt.Errorf("%w: id %q", ErrDuplicateUser, u.ID)
		}
		if _, ok := snap.byName[u.Name]; ok {
			return nil, fmt.Errorf("%w: name %q", ErrDuplicateUser, u.Name)
		}
		snap.byID[u.ID] = &u
		snap.byName[u.Name] = &u
		snap.order = append(snap.order, &u)
	}
	return snap, nil
}
