//go:build windows

package gui

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"syscall"
	"time"
	"unsafe"

	"github.com/lxn/win"
	"github.com/rs/zerolog"
	"golang.org/x/sys/windows"

	"screen-clipper/src/overlay"
	"screen-clipper/src/selection"
)

const (
	overlayClassName = "ScreenClipperOverlay"
	wsExLayered      = 0x00080000
	wsExToolWindow   = 0x00000080
	lwaAlpha         = 0x00000002
	wmApp            = 0x8000
	wmWake           = wmApp + 1
	vkEscape         = 0x1B
	psSolid          = 0
)

var (
	user32                         = windows.NewLazySystemDLL("user32.dll")
	gdi32                          = windows.NewLazySystemDLL("gdi32.dll")
	procSetLayeredWindowAttributes = user32.NewProc("SetLayeredWindowAttributes")
	procPostThreadMessage          = user32.NewProc("PostThreadMessageW")
	procFillRect                   = user32.NewProc("FillRect")
	procCreatePen                  = gdi32.NewProc("CreatePen")
	procCreateSolidBrush           = gdi32.NewProc("CreateSolidBrush")
	procRectangle                  = gdi32.NewProc("Rectangle")
)

type commandKind int

const (
	cmdShow commandKind = iota
	cmdHide
	cmdDraw
	cmdClear
	cmdQuit
)

type command struct {
	kind  commandKind
	index int
	rect  selection.Rect
}

type window struct {
	hwnd      win.HWND
	bounds    selection.Rect
	selection selection.Rect
	dragging  bool
}

// winRenderer owns one layered top-most window per overlay index. All window
// calls happen on a single locked OS thread; the exported methods only queue
// commands and wake that thread.
type winRenderer struct {
	log      zerolog.Logger
	events   chan overlay.PointerEvent
	threadID uint32

	mu      sync.Mutex
	pending []command
	closed  bool

	// Owned by the UI thread.
	windows map[int]*window
	byHWND  map[win.HWND]int
	class   *uint16
	cursor  win.HCURSOR
}

// active is the renderer whose windows the window procedure serves.
var active *winRenderer

// New starts the UI thread and returns once it is ready to take commands.
func New(log zerolog.Logger) (Renderer, error) {
	if active != nil {
		return nil, errors.New("gui: renderer already running")
	}
	r := &winRenderer{
		log:     log,
		events:  make(chan overlay.PointerEvent, eventBuffer),
		windows: map[int]*window{},
		byHWND:  map[win.HWND]int{},
	}
	ready := make(chan error, 1)
	go r.loop(ready)
	select {
	case err := <-ready:
		if err != nil {
			return nil, err
		}
	case <-time.After(5 * time.Second):
		return nil, errors.New("gui: UI thread did not start")
	}
	return r, nil
}

func (r *winRenderer) Events() <-chan overlay.PointerEvent { return r.events }

func (r *winRenderer) Show(index int, bounds selection.Rect) {
	r.post(command{kind: cmdShow, index: index, rect: bounds})
}

func (r *winRenderer) Hide(index int) { r.post(command{kind: cmdHide, index: index}) }

func (r *winRenderer) DrawRect(index int, rect selection.Rect) {
	r.post(command{kind: cmdDraw, index: index, rect: rect})
}

func (r *winRenderer) Clear(index int) { r.post(command{kind: cmdClear, index: index}) }

// Close destroys all windows and stops the UI thread.
func (r *winRenderer) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()
	r.post(command{kind: cmdQuit})
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}

func (r *winRenderer) post(c command) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.pending = append(r.pending, c)
	r.mu.Unlock()
	procPostThreadMessage.Call(uintptr(r.threadID), wmWake, 0, 0)
}

func (r *winRenderer) loop(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	r.threadID = windows.GetCurrentThreadId()
	if err := r.registerClass(); err != nil {
		ready <- err
		return
	}
	defer win.UnregisterClass(r.class)
	active = r
	defer func() { active = nil }()

	// Make sure the thread has a message queue before anyone posts to it.
	var msg win.MSG
	win.PeekMessage(&msg, 0, 0, 0, win.PM_NOREMOVE)
	ready <- nil

	for {
		ret := win.GetMessage(&msg, 0, 0, 0)
		if ret == 0 || ret == -1 {
			break
		}
		if msg.HWnd == 0 && msg.Message == wmWake {
			if !r.drain() {
				break
			}
			continue
		}
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)
	}

	for _, w := range r.windows {
		win.DestroyWindow(w.hwnd)
	}
	close(r.events)
}

func (r *winRenderer) registerClass() error {
	r.cursor = win.LoadCursor(0, win.MAKEINTRESOURCE(win.IDC_CROSS))
	class, err := syscall.UTF16PtrFromString(overlayClassName)
	if err != nil {
		return err
	}
	wc := win.WNDCLASSEX{
		CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
		Style:         win.CS_HREDRAW | win.CS_VREDRAW,
		LpfnWndProc:   syscall.NewCallback(overlayWndProc),
		HInstance:     win.GetModuleHandle(nil),
		HCursor:       r.cursor,
		LpszClassName: class,
	}
	if win.RegisterClassEx(&wc) == 0 {
		return fmt.Errorf("gui: failed to register window class")
	}
	r.class = class
	return nil
}

// drain applies queued commands. It returns false on cmdQuit.
func (r *winRenderer) drain() bool {
	r.mu.Lock()
	cmds := r.pending
	r.pending = nil
	r.mu.Unlock()

	for _, c := range cmds {
		switch c.kind {
		case cmdShow:
			r.show(c.index, c.rect)
		case cmdHide:
			if w := r.windows[c.index]; w != nil {
				win.ShowWindow(w.hwnd, win.SW_HIDE)
			}
		case cmdDraw:
			if w := r.windows[c.index]; w != nil {
				w.selection = c.rect
				win.InvalidateRect(w.hwnd, nil, true)
			}
		case cmdClear:
			if w := r.windows[c.index]; w != nil {
				w.selection = selection.Rect{}
				w.dragging = false
				win.InvalidateRect(w.hwnd, nil, true)
			}
		case cmdQuit:
			return false
		}
	}
	return true
}

func (r *winRenderer) show(index int, bounds selection.Rect) {
	w := r.windows[index]
	if w == nil {
		hwnd := win.CreateWindowEx(
			win.WS_EX_TOPMOST|wsExLayered|wsExToolWindow,
			r.class,
			r.class,
			win.WS_POPUP,
			int32(bounds.X), int32(bounds.Y), int32(bounds.Width), int32(bounds.Height),
			0, 0, win.GetModuleHandle(nil), nil,
		)
		if hwnd == 0 {
			r.log.Error().Int("overlay", index).Msg("Failed to create overlay window")
			return
		}
		procSetLayeredWindowAttributes.Call(uintptr(hwnd), 0, overlayAlpha, lwaAlpha)
		w = &window{hwnd: hwnd}
		r.windows[index] = w
		r.byHWND[hwnd] = index
	}
	w.bounds = bounds
	win.SetWindowPos(w.hwnd, win.HWND_TOPMOST,
		int32(bounds.X), int32(bounds.Y), int32(bounds.Width), int32(bounds.Height),
		win.SWP_SHOWWINDOW)
	win.SetForegroundWindow(w.hwnd)
	r.log.Debug().Int("overlay", index).Interface("bounds", bounds).Msg("Overlay window shown")
}

func pointFromLParam(lParam uintptr) selection.Point {
	// Coordinates are signed while the mouse is captured outside the window.
	return selection.Point{
		X: int(int16(win.LOWORD(uint32(lParam)))),
		Y: int(int16(win.HIWORD(uint32(lParam)))),
	}
}

func overlayWndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	r := active
	if r == nil {
		return win.DefWindowProc(hwnd, msg, wParam, lParam)
	}
	index, ok := r.byHWND[hwnd]
	if !ok {
		return win.DefWindowProc(hwnd, msg, wParam, lParam)
	}
	w := r.windows[index]

	switch msg {
	case win.WM_LBUTTONDOWN:
		win.SetCapture(hwnd)
		w.dragging = true
		send(r.events, overlay.PointerEvent{Kind: overlay.PointerDownEvent, Index: index, Point: pointFromLParam(lParam)})
		return 0
	case win.WM_MOUSEMOVE:
		if w.dragging {
			send(r.events, overlay.PointerEvent{Kind: overlay.PointerMoveEvent, Index: index, Point: pointFromLParam(lParam)})
		}
		return 0
	case win.WM_LBUTTONUP:
		if w.dragging {
			w.dragging = false
			win.ReleaseCapture()
			send(r.events, overlay.PointerEvent{Kind: overlay.PointerUpEvent, Index: index, Point: pointFromLParam(lParam)})
		}
		return 0
	case win.WM_KEYDOWN:
		if wParam == vkEscape {
			send(r.events, overlay.PointerEvent{Kind: overlay.CancelEvent, Index: index})
		}
		return 0
	case win.WM_PAINT:
		r.paint(hwnd, w)
		return 0
	case win.WM_ERASEBKGND:
		return 1
	}
	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}

func (r *winRenderer) paint(hwnd win.HWND, w *window) {
	var ps win.PAINTSTRUCT
	hdc := win.BeginPaint(hwnd, &ps)
	defer win.EndPaint(hwnd, &ps)

	client := win.RECT{Right: int32(w.bounds.Width), Bottom: int32(w.bounds.Height)}
	bg, _, _ := procCreateSolidBrush.Call(overlayFillRGB)
	if bg != 0 {
		procFillRect.Call(uintptr(hdc), uintptr(unsafe.Pointer(&client)), bg)
		win.DeleteObject(win.HGDIOBJ(bg))
	}

	if w.selection.Empty() {
		return
	}
	pen, _, _ := procCreatePen.Call(psSolid, 2, selectionPenRGB)
	if pen == 0 {
		return
	}
	oldPen := win.SelectObject(hdc, win.HGDIOBJ(pen))
	oldBrush := win.SelectObject(hdc, win.GetStockObject(win.NULL_BRUSH))
	s := w.selection
	procRectangle.Call(uintptr(hdc), uintptr(s.X), uintptr(s.Y), uintptr(s.X+s.Width), uintptr(s.Y+s.Height))
	win.SelectObject(hdc, oldBrush)
	win.SelectObject(hdc, oldPen)
	win.DeleteObject(win.HGDIOBJ(pen))
}
