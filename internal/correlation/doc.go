// Package correlation
// Author: momentics <momentics@gmail.com>
//
// Pending-request registry for the asynchronous service layer.
// Every dispatched request lives in the Table from dispatch until exactly
// one of response, timeout, cancellation or shutdown removes it. All
// operations share one mutex; callbacks are never run under it.

package correlation
