package ebt

// dispatch offers an option code that no builtin claimed to the loaded
// extensions: the target first, then matches, then watchers.
func (p *parser) dispatch(c int) error {
	arg := p.scan.Optarg
	claimed := false

	if t := p.d.Target; t != nil {
		ok, err := p.offer(t, c, arg, p.invert)
		if err != nil {
			return err
		}
		claimed = ok
	}

	if !claimed {
		invert, err := p.checkInverse(&arg)
		if err != nil {
			return err
		}
		if e, local, ok := p.reg.Resolve(c); ok && e.Kind() != KindTarget {
			ok, err := e.Parse(local, arg, invert)
			if err != nil {
				return asParameterProblem(err)
			}
			if ok {
				p.d.attach(e)
				claimed = true
			}
		}
	}

	if !p.d.Command.RuleBearing() {
		return Errorf("Extensions only for -A, -I, -D and -C")
	}
	if !claimed {
		p.logger.Debug("option ignored", "code", c)
	}
	return nil
}

// offer hands c to e when it falls inside e's band.
func (p *parser) offer(e Extension, c int, arg string, invert bool) (bool, error) {
	owner, local, ok := p.reg.Resolve(c)
	if !ok || owner != e {
		return false, nil
	}
	ok, err := e.Parse(local, arg, invert)
	if err != nil {
		return false, asParameterProblem(err)
	}
	return ok, nil
}

// finalize runs the post-parse checks of every extension in use. Only
// rule bearing commands have any.
func (p *parser) finalize() error {
	d := p.d
	if d.Command.RuleBearing() {
		for _, m := range d.Matches {
			if err := m.Finalize(); err != nil {
				return asParameterProblem(err)
			}
		}
		for _, w := range d.Watchers {
			if err := w.Finalize(); err != nil {
				return asParameterProblem(err)
			}
		}
		if d.Target != nil {
			if err := d.Target.Finalize(); err != nil {
				return asParameterProblem(err)
			}
		}
	}
	d.Proto.normalize()
	return nil
}
