package overlay

// SetVisible attaches every cached pair to the surface when show is true and
// detaches them all otherwise. Geometry and cache contents are left alone.
func (r *Reconciler) SetVisible(show bool) {
	r.cfg.ShowOverlays = show
	for _, e := range r.cache {
		switch {
		case show && !e.attached:
			r.surface.AddOverlay(e.rect)
			r.surface.AddOverlay(e.handle)
			e.attached = true
		case !show && e.attached:
			r.surface.RemoveOverlay(e.rect)
			r.surface.RemoveOverlay(e.handle)
			e.attached = false
		}
	}
}

// Visible reports the last requested visibility.
func (r *Reconciler) Visible() bool { return r.cfg.ShowOverlays }
