package client

import "sync"

// Identity is an IdentityProvider fed by the auth service.
type Identity struct {
	mu        sync.Mutex
	user      *User
	nextID    int
	listeners map[int]func(*User)
}

func NewIdentity() *Identity {
	return &Identity{listeners: make(map[int]func(*User))}
}

func (i *Identity) CurrentUser() *User {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.user == nil {
		return nil
	}
	u := *i.user
	return &u
}

func (i *Identity) OnAuthStateChange(fn func(*User)) func() {
	i.mu.Lock()
	id := i.nextID
	i.nextID++
	i.listeners[id] = fn
	i.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			i.mu.Lock()
			delete(i.listeners, id)
			i.mu.Unlock()
		})
	}
}

// Set replaces the signed-in user (nil signs out) and notifies listeners
// when it actually changed.
func (i *Identity) Set(u *User) {
	i.mu.Lock()
	if sameUser(i.user, u) {
		i.mu.Unlock()
		return
	}
	if u != nil {
		c := *u
		u = &c
	}
	i.user = u
	fns := make([]func(*User), 0, len(i.listeners))
	for _, fn := range i.listeners {
		fns = append(fns, fn)
	}
	i.mu.Unlock()

	for _, fn := range fns {
		if u == nil {
			fn(nil)
			continue
		}
		c := *u
		fn(&c)
	}
}

func sameUser(a, b *User) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
