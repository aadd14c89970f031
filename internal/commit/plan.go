package commit

// ExcludeAllPattern keeps a close-branch-only commit from picking up pending
// changes. hg receives it with the quotes.
const ExcludeAllPattern = `"**"`

// DeriveInvocationSpec computes the flags of chunk index out of total.
//
// Only the first chunk may include subrepositories, and it never amends when it
// does. Later chunks fold into the commit made by the first one when amend is
// supported, and become separate commits otherwise. The branch is closed by
// the last chunk only.
func DeriveInvocationSpec(index, total int, files []string, req Request, amendSupported bool, state RepoState) InvocationSpec {
	spec := InvocationSpec{Index: index, Files: files}

	if index == 0 {
		spec.UseSubrepos = len(req.Subrepos) > 0
		spec.UseAmend = !spec.UseSubrepos && req.Amend
	} else {
		spec.UseAmend = amendSupported
	}
	spec.CloseBranch = req.CloseBranch && index == total-1
	spec.ExcludeAll = excludeAll(spec, state)
	return spec
}

// MergeInvocationSpec is the single invocation used when no files are given:
// hg commits everything pending, as required for merges.
func MergeInvocationSpec(req Request, state RepoState) InvocationSpec {
	spec := InvocationSpec{
		UseAmend:    req.Amend,
		CloseBranch: req.CloseBranch,
		Files:       []string{},
	}
	spec.ExcludeAll = excludeAll(spec, state)
	return spec
}

// During a merge every merged file must be committed, so nothing is excluded.
func excludeAll(spec InvocationSpec, state RepoState) bool {
	return spec.CloseBranch && len(spec.Files) == 0 && state != StateMerging
}

// Args builds the `hg commit` argument list for spec.
func Args(spec InvocationSpec, logfile string, subrepos []string) []string {
	args := []string{"--logfile", logfile}

	if spec.UseSubrepos {
		args = append(args, "-S")
		args = append(args, subrepos...)
	} else if spec.UseAmend {
		args = append(args, "--amend")
	}

	if spec.CloseBranch {
		if spec.ExcludeAll {
			args = append(args, "-X", ExcludeAllPattern)
		}
		args = append(args, "--close-branch")
	}

	return append(args, spec.Files...)
}
