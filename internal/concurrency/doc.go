// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Concurrency primitives for hioload-ua: a lock-free SPSC ring used as the
// transport receive inbox, and the completion Batch the processing step
// fills under the correlation table lock and runs after releasing it.
package concurrency
