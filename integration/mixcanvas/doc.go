// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package mixcanvas presents ggmix compositor frames in a gogpu window.
//
// The data flow is:
//
//	Compositor.Paint -> Presenter.Present (copy) -> RenderTo -> GPU texture -> window
//
// # Usage
//
//	p, err := mixcanvas.New(app.WindowProvider(), app.GPUContextProvider())
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//
//	comp := ggmix.NewCompositor(ggmix.WithPresenter(p))
//	comp.AttachEvents(app.EventSource())
//	go comp.Run(ctx)
//
//	app.OnDraw(func(dc *gogpu.Context) {
//	    p.RenderTo(dc.AsTextureDrawer())
//	})
//
// The package depends on gpucontext interfaces only, so it does not import
// gogpu.
package mixcanvas
