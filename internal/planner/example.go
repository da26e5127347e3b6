package planner

// ExampleSchedule is a sample week used to try the planner without typing one.
const ExampleSchedule = `My weekly nursing university schedule:

CLASSES:
- Monday: Nursing Fundamentals 9:00-12:00, Anatomy Lab 14:00-17:00
- Tuesday: Pharmacology lecture 10:00-12:00, Clinical Skills 14:00-17:00
- Wednesday: Pathophysiology 9:00-11:00, Patient Care Workshop 13:00-16:00
- Thursday: FREE DAY (no classes)
- Friday: Community Health 9:00-12:00, then I have a project presentation at 15:00

WORK (Hotel night shifts):
- Friday 22:00 to Saturday 06:00
- Saturday 22:00 to Sunday 06:00

COMMUTE:
- Train ride is 45 minutes each way
- I leave home around 7:30 AM to arrive by 8:30 AM

URGENT DEADLINES:
- Care plan assignment due Thursday 23:59
- Pharmacology quiz next Tuesday during class
- Clinical reflection report due in 10 days

FINAL EXAMS COMING UP:
- Anatomy: December 15
- Pharmacology: December 18
- Patient Care: December 20

PERSONAL NOTES:
- I'm completely exhausted after night shifts and need good sleep
- I wake up around 6:00 AM on class days
- I prefer studying in the morning when I'm fresh
- Need time for meals and family
- Thursday is my power day since no classes!`
