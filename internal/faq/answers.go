package faq

const projectsAnswer = "Safir has worked on several impressive projects:\n\n" +
	"**Campus Security System** - YOLO-based car number plate detection and theft detection\n\n" +
	"**Neural Style Transfer** - Artistic image transformation using deep learning\n\n" +
	"**Steganography System** - Secure data hiding in images\n\n" +
	"Would you like to know more about any specific project?"

const skillsAnswer = "Safir's technical expertise includes:\n\n" +
	"**AI/ML:** YOLOv8, TensorFlow, PyTorch, Computer Vision\n\n" +
	"**Backend:** Python, FastAPI, Node.js\n\n" +
	"**Frontend:** React, Next.js, TypeScript\n\n" +
	"**Tools:** Docker, Git, OpenCV\n\n" +
	"He specializes in AI automation and computer vision applications."

const visionAnswer = "Safir has extensive experience with **YOLO (You Only Look Once)** object detection:\n\n" +
	"- Built a Campus Security System with car plate recognition\n" +
	"- Real-time object detection and tracking\n" +
	"- Theft detection using YOLOv8\n" +
	"- Optimized for performance and accuracy\n\n" +
	"He can implement custom detection solutions for various use cases."

const experienceAnswer = "Safir is a **Software Engineer** specializing in:\n\n" +
	"- AI Automation Development\n" +
	"- Computer Vision Engineering\n" +
	"- LLM Integration\n\n" +
	"He builds high-performance AI systems and automation tools. Check out his projects section to see his work!"

const contactAnswer = "You can reach Safir through:\n\n" +
	"📧 **Email:** safir.inbox@gmail.com\n\n" +
	"💼 **LinkedIn:** [linkedin.com/in/safir-a73666338](https://www.linkedin.com/in/safir-a73666338)\n\n" +
	"🐙 **GitHub:** [github.com/Safirroshan](https://github.com/Safirroshan)\n\n" +
	"Feel free to reach out for collaborations, job opportunities, or project inquiries!"

const styleTransferAnswer = "The **Neural Style Transfer** project uses deep learning to transform images into artistic styles:\n\n" +
	"- Built with TensorFlow and VGG19\n" +
	"- Combines content and style representations\n" +
	"- Creates unique artistic renditions\n" +
	"- Real-time processing capabilities\n\n" +
	"It's a great example of creative AI applications!"

const steganographyAnswer = "The **Steganography System** provides secure data hiding:\n\n" +
	"- LSB (Least Significant Bit) implementation\n" +
	"- Encryption layer for added security\n" +
	"- Embeds data in images without detection\n" +
	"- Maintains visual quality\n\n" +
	"Perfect for covert communication and data protection."

const campusSecurityAnswer = "The **Campus Security System** is a comprehensive solution:\n\n" +
	"- **ANPR:** Automatic Number Plate Recognition\n" +
	"- **Theft Detection:** Real-time suspicious activity alerts\n" +
	"- **YOLOv8 powered:** High accuracy detection\n" +
	"- **FastAPI backend:** Scalable and fast\n\n" +
	"Contact Safir for a live demo!"

const whyHireAnswer = "Here's why you should work with Safir:\n\n" +
	"✅ **Proven expertise** in AI and Computer Vision\n" +
	"✅ **Real-world projects** with measurable results\n" +
	"✅ **Full-stack capabilities** from ML models to deployment\n" +
	"✅ **Problem solver** who delivers practical solutions\n" +
	"✅ **Fast learner** who stays updated with latest tech\n\n" +
	"He's passionate about building AI systems that solve real problems!"

// DefaultAnswer lists the topics the matcher knows about.
const DefaultAnswer = "I can help you learn more about Safir! Try asking about:\n\n" +
	"- His **projects** (Campus Security, Neural Style Transfer, Steganography)\n" +
	"- His **skills** and tech stack\n" +
	"- His **experience** in AI and Computer Vision\n" +
	"- How to **contact** him\n\n" +
	"What would you like to know?"
