package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTeacherDirectory(t *testing.T) {
	d := NewTeacherDirectory([]string{"alice", " bob ", ""})

	assert.True(t, d.IsTeacher("alice"))
	assert.False(t, d.IsTeacher("carol"))
	assert.False(t, d.IsTeacher(""))

	d.Replace([]string{"carol"})
	assert.False(t, d.IsTeacher("alice"))
	assert.True(t, d.IsTeacher("carol"))
	assert.Equal(t, 1, d.Len())
}

func TestTeacherDirectoryConcurrentReload(t *testing.T) {
	d := NewTeacherDirectory([]string{"alice"})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			d.IsTeacher("alice")
		}()
		go func() {
			defer wg.Done()
			d.Replace([]string{"alice", "bob"})
		}()
	}
	wg.Wait()

	assert.True(t, d.IsTeacher("bob"))
}
