package service

import (
	"strings"
	"sync"
)

// TeacherDirectory 允许创建课程的用户 ID 白名单，配置重载时整体替换
type TeacherDirectory struct {
	mu       sync.RWMutex
	teachers map[string]struct{}
}

func NewTeacherDirectory(ids []string) *TeacherDirectory {
	d := &TeacherDirectory{}
	d.Replace(ids)
	return d
}

func (d *TeacherDirectory) IsTeacher(userID string) bool {
	if userID == "" {
		return false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.teachers[userID]
	return ok
}

func (d *TeacherDirectory) Replace(ids []string) {
	next := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			next[id] = struct{}{}
		}
	}
	d.mu.Lock()
	d.teachers = next
	d.mu.Unlock()
}

func (d *TeacherDirectory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.teachers)
}
