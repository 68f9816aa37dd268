/*
 * Copyright 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package database

import "fmt"

// ConnectionError is returned by New when a session connection cannot be
// established. It is fatal to the session and never retried.
type ConnectionError struct {
	Dialect string
	Msg     string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("database connection error (%s): %s: %v", e.Dialect, e.Msg, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
