/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package builder

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyBuilt is returned when Build is called twice.
	ErrAlreadyBuilt = errors.New("boot(builder): application already built")
	// ErrAlreadyRunning is returned when an App is run more than once.
	ErrAlreadyRunning = errors.New("boot(builder): application already running")
	// ErrDuplicateStarter is returned when two starters share a name.
	ErrDuplicateStarter = errors.New("boot(builder): duplicate starter")
	// ErrNilStarter is returned when a nil starter is added.
	ErrNilStarter = errors.New("boot(builder): nil starter")
	// ErrNilLogger is returned when a logger starter provides no logger.
	ErrNilLogger = errors.New("boot(builder): logger starter returned nil logger")
	// ErrTaskPanic wraps the value of a panicking task.
	ErrTaskPanic = errors.New("boot(builder): task panicked")
	// ErrShutdownTimeout is returned when tasks outlive the shutdown timeout.
	ErrShutdownTimeout = errors.New("boot(builder): tasks did not stop before the shutdown timeout")
)

// StageError names the starter or plugin whose build step failed.
type StageError struct {
	// Stage is "config", "logger", "starter" or "plugin".
	Stage string
	Name  string
	Err   error
}

func (e *StageError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("boot(builder): %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("boot(builder): %s %s: %v", e.Stage, e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error { return e.Err }

// TaskError is the terminal error of a run whose task failed.
type TaskError struct {
	Task string
	Err  error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("boot(builder): task %s failed: %v", e.Task, e.Err)
}

// Unwrap returns the task's error.
func (e *TaskError) Unwrap() error { return e.Err }
