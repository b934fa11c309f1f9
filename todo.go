/*
Project: CovEducation mentoring - volunteer mentors matched with students through their parents.
*/
package website

/*
TODO: pagination on GET /v1/mentorships and GET /v1/mentors (newest first, cursor on created_at)

TODO: mentor availability
	- weekly slots on the mentor profile
	- filter QueryMentors by slot

TODO: notifications
	- notify the parent on accept / reject (templates: mentorship_accepted, mentorship_rejected)
	- send through notify.Dispatcher in a post-commit handler, same as the request notification

TODO: admin: bulk import mentors from CSV (addmentor per row)

------------------------------------ Version X ----------------------------------------
FIXME:Edge-case:
- Student changes grade level mid-mentorship: keep the mentorship, warn the mentor ??
- Mentor account deleted while mentorships are ACTIVE: archive them all ??
*/
