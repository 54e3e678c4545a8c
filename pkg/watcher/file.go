package watcher

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Notification is the delegate methods from the Notifier
type Notification interface {
	WatcherItemDidChange(string)
	WatcherDidError(error)
}

// Notifier is the base interface for file watching
type Notifier interface {
	Start(Notification)
	Add(string) error
	Shutdown()
}

// File is a file watcher that notifies when a file has been changed
type File struct {
	watcher  *fsnotify.Watcher
	shutdown chan struct{}
	once     sync.Once
	mu       sync.Mutex
	files    map[string]struct{}
}

var _ Notifier = (*File)(nil)

// NewFile is a standard init function
func NewFile() (*File, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	f := &File{
		watcher:  watcher,
		shutdown: make(chan struct{}),
		files:    map[string]struct{}{},
	}
	return f, nil
}

// Add adds a file to start watching.
// 监听所在目录, 编辑器以 rename 方式保存时文件本身的 watch 会丢失
func (f *File) Add(path string) error {
	path = filepath.Clean(path)
	f.mu.Lock()
	f.files[path] = struct{}{}
	f.mu.Unlock()
	return f.watcher.Add(filepath.Dir(path))
}

// Shutdown stop the file watching run loop
func (f *File) Shutdown() {
	f.once.Do(func() {
		close(f.shutdown)
	})
}

// Start is a runloop to watch for files changes from the file paths added from Add()
func (f *File) Start(notifier Notification) {
	defer f.watcher.Close()
	for {
		select {
		case event, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if !f.watched(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				notifier.WatcherItemDidChange(event.Name)
			}
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			notifier.WatcherDidError(err)
		case <-f.shutdown:
			return
		}
	}
}

func (f *File) watched(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[filepath.Clean(name)]
	return ok
}
