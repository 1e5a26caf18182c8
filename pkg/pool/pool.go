// Copyright 2024 The livechat-go Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package pool provides the dispatch manager's two holding structures: a
// round-robin cursor over agent handles and a bounded FIFO waiting queue
// for customers. Neither is safe for concurrent use; both are private to
// the dispatch manager's loop.
package pool

// Cursor is a mutable circular sequence with a round-robin cursor. Next
// returns the element under the cursor and advances it modulo the current
// length, so the sequence may grow or shrink between calls.
type Cursor[T any] struct {
	items  []T
	cursor int
}

// NewCursor creates a cursor over the given initial items.
func NewCursor[T any](items []T) *Cursor[T] {
	return &Cursor[T]{items: items}
}

// Push appends an item at the end. The cursor's relative position is
// unaffected.
func (c *Cursor[T]) Push(item T) {
	c.items = append(c.items, item)
}

// Next returns the element at the cursor and advances the cursor by one,
// wrapping at the current length. It returns the zero value and false when
// the sequence is empty.
func (c *Cursor[T]) Next() (T, bool) {
	var zero T
	if len(c.items) == 0 {
		return zero, false
	}
	if c.cursor >= len(c.items) {
		c.cursor = 0
	}
	item := c.items[c.cursor]
	c.cursor = (c.cursor + 1) % len(c.items)
	return item, true
}

// Remove deletes the first item for which match returns true and reports
// whether anything was removed. The cursor is adjusted so iteration
// continues from the same relative position.
func (c *Cursor[T]) Remove(match func(T) bool) bool {
	for i, item := range c.items {
		if !match(item) {
			continue
		}
		c.items = append(c.items[:i], c.items[i+1:]...)
		if i < c.cursor {
			c.cursor--
		}
		if c.cursor >= len(c.items) {
			c.cursor = 0
		}
		return true
	}
	return false
}

// Contains reports whether any item matches.
func (c *Cursor[T]) Contains(match func(T) bool) bool {
	for _, item := range c.items {
		if match(item) {
			return true
		}
	}
	return false
}

// Len returns the number of items.
func (c *Cursor[T]) Len() int {
	return len(c.items)
}

// IsEmpty reports whether the sequence holds no items.
func (c *Cursor[T]) IsEmpty() bool {
	return len(c.items) == 0
}

// Queue is a bounded FIFO backed by a buffered channel, mirroring the
// waiting queue's backpressure semantics: a full queue rejects rather than
// grows.
type Queue[T any] struct {
	ch chan T
}

// NewQueue creates a queue with the given capacity.
func NewQueue[T any](capacity int) *Queue[T] {
	return &Queue[T]{ch: make(chan T, capacity)}
}

// TryPush appends an item and reports whether there was room for it.
func (q *Queue[T]) TryPush(item T) bool {
	select {
	case q.ch <- item:
		return true
	default:
		return false
	}
}

// TryPop removes and returns the front item, or reports false when the
// queue is empty.
func (q *Queue[T]) TryPop() (T, bool) {
	var zero T
	select {
	case item := <-q.ch:
		return item, true
	default:
		return zero, false
	}
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	return len(q.ch)
}
